package tui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary       = lipgloss.Color("#00BFFF") // Cyan, primary accent
	colorAccent        = lipgloss.Color("#FFD700") // Gold, needs attention
	colorSuccess       = lipgloss.Color("#00E676") // Green, approved/complete
	colorDanger        = lipgloss.Color("#FF5252") // Red, load errors
	colorMuted         = lipgloss.Color("#636363") // Gray, de-emphasized
	colorMutedLight    = lipgloss.Color("#8C8C8C") // Lighter gray, normal text
	colorWhite         = lipgloss.Color("#EEEEEE") // Off-white, primary text
	colorBrightWhite   = lipgloss.Color("#FFFFFF") // Pure white, emphatic text
	colorSurface       = lipgloss.Color("#1E1E2E") // Dark surface, status bar bg
	colorSurfaceBright = lipgloss.Color("#2A2A3C") // Lighter surface, selected row bg
	colorSurfaceDim    = lipgloss.Color("#181825") // Darkest surface, footer bg
	colorBlue          = lipgloss.Color("#5B8DEF") // Blue, in progress
	colorMagenta       = lipgloss.Color("#C792EA") // Magenta, workflow headers
)

// Selection indicator prepended to the active row.
const selectionIndicator = "▎"

// Tree expansion markers.
const (
	iconExpanded  = "▾"
	iconCollapsed = "▸"
	iconError     = "✗"
	iconFocus     = "★"
)

// Status bar styles.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorWhite).
			Bold(true).
			Padding(0, 1)

	styleStatusAttention = lipgloss.NewStyle().
				Background(colorSurface).
				Foreground(colorAccent).
				Bold(true)

	styleStatusDone = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorSuccess).
			Bold(true)

	styleStatusMeta = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorMutedLight)
)

// Tree row styles.
var (
	styleRowSelected = lipgloss.NewStyle().
				Foreground(colorBrightWhite).
				Bold(true)

	styleRowNormal = lipgloss.NewStyle().
			Foreground(colorMutedLight)

	styleRowDone = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleRowWorking = lipgloss.NewStyle().
			Foreground(colorBlue)

	styleRowAttention = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	styleRowFailed = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	styleRowWorkflow = lipgloss.NewStyle().
				Foreground(colorMagenta).
				Bold(true)

	styleRowMeta = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleSelectionIndicator = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)
)

// Detail panel styles.
var (
	styleDetailBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorMuted).
				Padding(0, 1)

	styleDetailTitle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleDetailDim = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleDetailLabel = lipgloss.NewStyle().
				Foreground(colorMutedLight)

	styleDetailValue = lipgloss.NewStyle().
				Foreground(colorWhite)

	styleDetailBanner = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	styleScrollIndicator = lipgloss.NewStyle().
				Foreground(colorMuted).
				Italic(true)

	styleProgressFill = lipgloss.NewStyle().
				Foreground(colorSuccess)

	styleProgressEmpty = lipgloss.NewStyle().
				Foreground(colorMuted)
)

// Footer styles.
var (
	styleFooter = lipgloss.NewStyle().
			Foreground(colorMuted).
			Background(colorSurfaceDim).
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(colorMuted)

	styleFooterKey = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleFooterSep = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleFooterDesc = lipgloss.NewStyle().
			Foreground(colorMutedLight)
)

// Message log styles.
var (
	styleMessage = lipgloss.NewStyle().
			Foreground(colorPrimary)

	styleMessageError = lipgloss.NewStyle().
				Foreground(colorDanger)
)

// Section border for separating view regions.
var styleSectionBorder = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder(), true, false, false, false).
	BorderForeground(colorMuted)
