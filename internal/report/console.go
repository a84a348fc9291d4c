package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/couchcryptid/flood-risk-etl/internal/hydrology"
)

var (
	accent = lipgloss.Color("#14B8A6")
	slate  = lipgloss.Color("#94A3B8")
	ink    = lipgloss.Color("#E5E7EB")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ink).
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(accent).
			Padding(0, 1)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginTop(1)
	dimStyle     = lipgloss.NewStyle().Foreground(slate)

	tierStyles = map[string]lipgloss.Style{
		hydrology.RiskExtreme.Label(): lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		hydrology.RiskHigh.Label():    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F97316")),
		hydrology.RiskMedium.Label():  lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		hydrology.RiskLow.Label():     lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")),
	}
)

// riskOrder lists tier labels from most to least severe.
func riskOrder() []string {
	tiers := hydrology.RiskTiers()
	out := make([]string, len(tiers))
	for i, t := range tiers {
		out[len(tiers)-1-i] = t.Label()
	}
	return out
}

// RenderRisk styles a tier label for terminal output.
func RenderRisk(label string) string {
	if s, ok := tierStyles[label]; ok {
		return s.Render(label)
	}
	return label
}

// PrintSummary writes a styled, human-readable summary to w.
func PrintSummary(w io.Writer, s Summary) {
	var b strings.Builder

	b.WriteString(titleStyle.Render("FLOOD DATA PROCESSING SUMMARY"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("run " + s.RunID))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Geographic Coverage"))
	fmt.Fprintf(&b, "\n  Total Districts: %d\n  Total States: %d\n", s.TotalDistricts, s.TotalStates)

	annual, monsoon := s.RainfallStatistics.Annual, s.RainfallStatistics.Monsoon
	b.WriteString(sectionStyle.Render("Rainfall Statistics (Annual)"))
	fmt.Fprintf(&b, "\n  Mean: %.1f mm\n  Median: %.1f mm\n  Range: %.1f - %.1f mm\n  Std Dev: %.1f mm\n",
		annual.Mean, annual.Median, annual.Min, annual.Max, annual.Std)

	b.WriteString(sectionStyle.Render("Monsoon Statistics"))
	fmt.Fprintf(&b, "\n  Mean: %.1f mm\n  Median: %.1f mm\n  Range: %.1f - %.1f mm\n",
		monsoon.Mean, monsoon.Median, monsoon.Min, monsoon.Max)

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Top %d High-Rainfall Districts", TopDistricts)))
	b.WriteString("\n")
	for i, d := range s.TopRainfallDistricts {
		fmt.Fprintf(&b, "  %d. %s, %s: %.1f mm\n", i+1, d.District, d.State, d.AnnualRainfall)
	}

	b.WriteString(sectionStyle.Render(fmt.Sprintf("High-Risk Districts (>%.0f mm annual)", HighRiskAnnualMM)))
	fmt.Fprintf(&b, "\n  Total: %d districts\n", len(s.HighRiskDistricts))
	for i, d := range s.HighRiskDistricts {
		if i == TopDistricts {
			break
		}
		fmt.Fprintf(&b, "  - %s, %s: %.1f mm\n", d.District, d.State, d.AnnualRainfall)
	}

	b.WriteString(sectionStyle.Render("Modelled Risk Distribution"))
	b.WriteString("\n")
	for _, label := range riskOrder() {
		fmt.Fprintf(&b, "  %s %d\n", RenderRisk(fmt.Sprintf("%-8s", label)), s.RiskDistribution[label])
	}

	fmt.Fprint(w, b.String())
}

// PrintAssessment writes one scenario's results, including the progression
// sampled every step hours.
func PrintAssessment(w io.Writer, a hydrology.Assessment, step int) {
	var b strings.Builder

	b.WriteString(titleStyle.Render("HYDROLOGICAL SIMULATION"))
	fmt.Fprintf(&b, "\n  Rainfall: %.1f mm\n  Soil: %s (CN %.0f)\n  Catchment: %.1f km2\n",
		a.RainfallMM, a.SoilClass, a.CurveNumber, a.CatchmentAreaKm2)
	fmt.Fprintf(&b, "  Runoff: %.2f mm\n  Volume: %.0f m3\n  Water Level: %.3f m\n  Risk: %s\n",
		a.RunoffMM, a.VolumeM3, a.DepthM, RenderRisk(a.RiskLabel))

	if step > 0 && len(a.Progression) > 0 {
		b.WriteString(sectionStyle.Render(fmt.Sprintf("Progression (%dh)", a.DurationHours)))
		b.WriteString("\n")
		for h := 0; h < len(a.Progression); h += step {
			fmt.Fprintf(&b, "  t+%3dh %7.3f\n", h, a.Progression[h])
		}
	}

	fmt.Fprint(w, b.String())
}
