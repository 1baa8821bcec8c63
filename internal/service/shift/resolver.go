package shift

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/shift-payroll-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-payroll-go/internal/pkg/localtime"
)

// ResolveActiveSegment finds the segment of preset that is active at now in zone.
// It returns (nil, nil) when no segment covers the instant. A malformed segment time
// is reported as a wrapped localtime.ErrInvalidTimeFormat.
func ResolveActiveSegment(preset shift.ShiftPreset, now time.Time, zone string) (*shift.ResolvedShiftSegment, error) {
	nowMinutes := localtime.MinutesOfDayInZone(now, zone)
	today := localtime.DateInZone(now, zone)
	yesterday := localtime.PreviousDateInZone(now, zone)

	segments := make([]shift.ShiftSegment, len(preset.Segments))
	copy(segments, preset.Segments)
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].SegmentNo < segments[j].SegmentNo
	})

	for _, seg := range segments {
		start, err := localtime.ParseTimeToMinutes(seg.StartTime)
		if err != nil {
			return nil, fmt.Errorf("preset %s segment %d start: %w", preset.ID, seg.SegmentNo, err)
		}
		end, err := localtime.ParseTimeToMinutes(seg.EndTime)
		if err != nil {
			return nil, fmt.Errorf("preset %s segment %d end: %w", preset.ID, seg.SegmentNo, err)
		}

		var anchor string
		if seg.CrossesMidnight {
			if nowMinutes < end {
				anchor = yesterday
			} else if nowMinutes >= start {
				anchor = today
			} else {
				continue
			}
		} else {
			if nowMinutes < start || nowMinutes >= end {
				continue
			}
			anchor = today
		}

		endAnchor := anchor
		if seg.CrossesMidnight && end < start {
			endAnchor = today
		}

		return &shift.ResolvedShiftSegment{
			PresetID:           preset.ID,
			PresetName:         preset.Name,
			SegmentID:          seg.ID,
			SegmentNo:          seg.SegmentNo,
			StartTime:          seg.StartTime,
			EndTime:            seg.EndTime,
			CrossesMidnight:    seg.CrossesMidnight,
			LateGraceMinutes:   seg.LateGraceMinutes,
			ShiftDate:          anchor,
			ScheduleStartLocal: localtime.ComposeLocalDateTime(anchor, seg.StartTime),
			ScheduleEndLocal:   localtime.ComposeLocalDateTime(endAnchor, seg.EndTime),
			Lateness: shift.LatenessRule{
				StartMinutes:     start,
				LateGraceMinutes: seg.LateGraceMinutes,
			},
		}, nil
	}

	return nil, nil
}
