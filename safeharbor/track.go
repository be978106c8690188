/*
track.go - BOC qualification track classifier

PURPOSE:
  Determines which statutory track(s) a project can use to establish
  Beginning of Construction with a payment on a given date.

TRACKS:
  ITC/PTC via 5% safe harbor
    - Only projects <= 1.5 MW AC (eliminated above that size 9/2/2025)
    - Payment on or before Jul 4, 2026
  FEOC exemption
    - Any size
    - Payment on or before Dec 31, 2025

DECISION TABLE:
  capacity    payment <= 12/31/25   payment <= 7/4/26   result
  > 1.5 MW    yes                   -                   FEOC Exemption Only
  > 1.5 MW    no                    -                   Must use Physical Work Test (warning)
  <= 1.5 MW   yes                   yes                 ITC/PTC via 5% safe harbor + FEOC exemption
  <= 1.5 MW   no                    yes                 ITC/PTC via 5% safe harbor
  <= 1.5 MW   no                    no                  Neither track available (warning)

  Capacity <= 0 or a missing payment date is TrackInvalid: not eligible,
  warning set. The FEOC deadline precedes the small-project deadline, so a
  small project can never hold FEOC without ITC/PTC.
*/
package safeharbor

import (
	"strings"

	"github.com/warp/safe-harbor-engine/generic"
)

// SizeThreshold separates small projects (5% safe harbor retained) from
// large ones.
var SizeThreshold = generic.NewMW(1.5)

// TrackKind is the tagged outcome of ClassifyBOCTrack.
type TrackKind int

const (
	TrackInvalid TrackKind = iota
	TrackFEOCOnly
	TrackPhysicalWorkRequired
	TrackSmallITCAndFEOC
	TrackSmallITCOnly
	TrackNone
)

func (k TrackKind) String() string {
	switch k {
	case TrackFEOCOnly:
		return "feoc_only"
	case TrackPhysicalWorkRequired:
		return "physical_work_required"
	case TrackSmallITCAndFEOC:
		return "itc_and_feoc"
	case TrackSmallITCOnly:
		return "itc_only"
	case TrackNone:
		return "none"
	}
	return "invalid"
}

// Track labels shown to users.
const (
	LabelFEOCOnly         = "FEOC Exemption Only (5% safe harbor available)"
	LabelPhysicalWork     = "Must use Physical Work Test"
	LabelITCSafeHarbor    = "ITC/PTC via 5% safe harbor"
	LabelFEOCExemption    = "FEOC exemption"
	LabelNeither          = "Neither track available"
	LabelInvalid          = "Unable to classify"
	invalidProjectDetails = "Capacity must be positive and a payment date is required"
)

var largeProjectDetails = "Projects >1.5MW cannot use 5% safe harbor for ITC/PTC after " +
	SafeHarborEliminationDate.Time.Format("1/2/06")

// TrackResult describes the available BOC track(s).
type TrackResult struct {
	Kind          TrackKind
	Track         string
	Eligible      bool
	Warning       bool
	Details       string
	FEOCAvailable bool
	ITCAvailable  bool
}

// ClassifyBOCTrack determines the BOC track(s) available for a project of
// the given capacity paid on paymentDate.
func ClassifyBOCTrack(capacity generic.MW, paymentDate generic.TimePoint) TrackResult {
	if !capacity.IsPositive() || paymentDate.IsZero() {
		return TrackResult{
			Kind:    TrackInvalid,
			Track:   LabelInvalid,
			Warning: true,
			Details: invalidProjectDetails,
		}
	}

	feoc := paymentDate.BeforeOrEqual(FEOCDeadline)

	if capacity.GreaterThan(SizeThreshold) {
		if feoc {
			return TrackResult{
				Kind:          TrackFEOCOnly,
				Track:         LabelFEOCOnly,
				Eligible:      true,
				Details:       largeProjectDetails,
				FEOCAvailable: true,
			}
		}
		return TrackResult{
			Kind:    TrackPhysicalWorkRequired,
			Track:   LabelPhysicalWork,
			Warning: true,
			Details: largeProjectDetails,
		}
	}

	itc := paymentDate.BeforeOrEqual(ITCSmallProjectDeadline)

	var labels []string
	if itc {
		labels = append(labels, LabelITCSafeHarbor)
	}
	if feoc {
		labels = append(labels, LabelFEOCExemption)
	}

	result := TrackResult{FEOCAvailable: feoc, ITCAvailable: itc}
	switch {
	case itc && feoc:
		result.Kind = TrackSmallITCAndFEOC
	case itc:
		result.Kind = TrackSmallITCOnly
	default:
		result.Kind = TrackNone
		result.Track = LabelNeither
		result.Warning = true
		return result
	}
	result.Track = strings.Join(labels, " + ")
	result.Eligible = true
	return result
}
