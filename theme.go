package advisor

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme. A negative index means no color.
type Theme struct {
	UserMsg int // User message accent
	Error   int // Error messages
	Success int // Sign-in confirmation
	Muted   int // Status bar, placeholders
	Accent  int // Headings, links, title
	CodeBg  int // Code block background
	UserBg  int // User message background
	ErrorBg int // Error block background
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg: 4,
		Error:   1,
		Success: 2,
		Muted:   8,
		Accent:  2,
		CodeBg:  0,
		UserBg:  -1,
		ErrorBg: -1,
	}
}
