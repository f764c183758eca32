package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"carefinder/internal/models/facility_models"
	"carefinder/pkg/utils"
)

const (
	fallbackName    = "Unknown Hospital"
	fallbackAddress = "Address not available"
	fallbackPhone   = "Phone not available"
	fallbackRating  = "No rating"
	fallbackWebsite = "Website not available"
	statusOpen      = "Open now"
	statusUnknown   = "Status unknown"
)

type ReportRenderer struct {
	EmergencyNumber string
	EmergencyLabel  string
}

func NewReportRenderer(emergencyNumber, emergencyLabel string) *ReportRenderer {
	if emergencyNumber == "" {
		emergencyNumber = "108"
	}
	if emergencyLabel == "" {
		emergencyLabel = "India Emergency Number"
	}
	return &ReportRenderer{EmergencyNumber: emergencyNumber, EmergencyLabel: emergencyLabel}
}

// Render formats a report as the user-facing text. It never fails: absent
// fields fall back to fixed text and every section is always present.
func (r *ReportRenderer) Render(report *facility_models.FacilityReport) string {
	var b strings.Builder

	label := ""
	radius := 0
	var facilities []facility_models.FacilityDetail
	if report != nil {
		label = report.LocationLabel
		radius = report.RadiusMeters
		facilities = report.Facilities
	}
	if strings.TrimSpace(label) == "" {
		label = unknownCity + ", " + unknownRegion
	}

	fmt.Fprintf(&b, "🌍 **Your Location:** %s\n", label)
	fmt.Fprintf(&b, "🔍 **Search Radius:** %s km\n", formatKilometers(radius))

	if len(facilities) == 0 {
		b.WriteString("\n❌ No hospitals found in your area. You may need to expand your search radius.")
	} else {
		fmt.Fprintf(&b, "🏥 **Found %d hospitals near you:**\n\n", len(facilities))
		entries := make([]string, 0, len(facilities))
		for i, f := range facilities {
			entries = append(entries, renderFacility(i+1, f))
		}
		b.WriteString(strings.Join(entries, "\n"))
	}

	b.WriteString("\n\n")
	b.WriteString(r.emergencyLine())
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "💡 **Note:** This information is for reference only. For emergencies, always call %s first before going to any hospital.", r.EmergencyNumber)
	return b.String()
}

func (r *ReportRenderer) emergencyLine() string {
	return fmt.Sprintf("🚨 **EMERGENCY:** For medical emergencies, call **%s** immediately (%s)", r.EmergencyNumber, r.EmergencyLabel)
}

// RenderError turns a lookup failure into the short message shown to users.
func (r *ReportRenderer) RenderError(err error) string {
	var cfgErr *utils.ConfigurationError
	var finderErr *utils.FinderError
	var apiErr *utils.PlacesAPIError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return fmt.Sprintf("❌ Google Places API key not found. Please set %s environment variable.", cfgErr.Setting)
	case errors.As(err, &finderErr) && finderErr.Kind == utils.KindNoLocation:
		return "❌ Could not detect your location automatically. Please check your internet connection."
	case errors.As(err, &apiErr):
		return "❌ Google Places API error: " + apiErr.Code
	case errors.Is(err, utils.ErrInvalidRadius), errors.Is(err, utils.ErrInvalidMaxResults):
		return "❌ " + err.Error()
	default:
		return fmt.Sprintf("❌ Error finding hospitals: %v", err)
	}
}

func renderFacility(n int, f facility_models.FacilityDetail) string {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		name = fallbackName
	}
	address := strings.TrimSpace(f.Address)
	if address == "" {
		address = fallbackAddress
	}
	phone := fallbackPhone
	if f.Phone != nil && *f.Phone != "" {
		phone = *f.Phone
	}
	rating := fallbackRating
	if f.Rating != nil {
		rating = strconv.FormatFloat(*f.Rating, 'f', -1, 64)
	}
	website := fallbackWebsite
	if f.Website != nil && *f.Website != "" {
		website = *f.Website
	}
	// closed and unknown hours both read as unknown
	status := statusUnknown
	if f.OpenNow != nil && *f.OpenNow {
		status = statusOpen
	}

	return fmt.Sprintf("\n🏥 **%d. %s**\n📍 **Address:** %s\n📞 **Phone:** %s\n⭐ **Rating:** %s\n🌐 **Website:** %s\n🕒 **Status:** %s\n",
		n, name, address, phone, rating, website, status)
}

// formatKilometers renders meters as kilometers with at least one decimal
// place, so 5000 becomes "5.0" and 2500 becomes "2.5".
func formatKilometers(meters int) string {
	s := strconv.FormatFloat(float64(meters)/1000, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
