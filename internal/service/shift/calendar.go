package shift

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/localtime"
	ical "github.com/emersion/go-ical"
)

const calendarProductID = "-//cmlabs-hris//shift-payroll//EN"

// ExpandOccurrences lays the preset's segments over days consecutive shift dates starting at from.
// Segment starts are wall-clock times in zone; each end is start plus the segment duration.
func ExpandOccurrences(preset shift.ShiftPreset, from string, days int, zone string) ([]shift.ShiftOccurrence, error) {
	first, err := time.Parse(localtime.DateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("invalid from date %q: %w", from, err)
	}

	segments := make([]shift.ShiftSegment, len(preset.Segments))
	copy(segments, preset.Segments)
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].SegmentNo < segments[j].SegmentNo
	})

	var occurrences []shift.ShiftOccurrence
	for d := 0; d < days; d++ {
		date := first.AddDate(0, 0, d).Format(localtime.DateLayout)
		for _, seg := range segments {
			minutes := seg.DurationMinutes()
			if minutes == 0 {
				continue
			}
			start, err := localtime.ParseLocalDateTime(localtime.ComposeLocalDateTime(date, seg.StartTime), zone)
			if err != nil {
				return nil, fmt.Errorf("preset %s segment %d: %w", preset.ID, seg.SegmentNo, localtime.ErrInvalidTimeFormat)
			}
			occurrences = append(occurrences, shift.ShiftOccurrence{
				PresetID:   preset.ID,
				PresetName: preset.Name,
				SegmentID:  seg.ID,
				SegmentNo:  seg.SegmentNo,
				ShiftDate:  date,
				Start:      start,
				End:        start.Add(time.Duration(minutes) * time.Minute),
			})
		}
	}
	return occurrences, nil
}

// EncodeCalendar renders occurrences as a VCALENDAR with one VEVENT each.
func EncodeCalendar(employeeID string, occurrences []shift.ShiftOccurrence, stamp time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, calendarProductID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	for _, o := range occurrences {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%s-%d@shift-payroll", employeeID, o.ShiftDate, o.SegmentNo))
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		event.Props.SetDateTime(ical.PropDateTimeStart, o.Start.UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, o.End.UTC())
		event.Props.SetText(ical.PropSummary, fmt.Sprintf("%s (segment %d)", o.PresetName, o.SegmentNo))
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}
