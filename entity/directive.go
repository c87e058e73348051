package entity

// Directive is the instruction parsed from a message caption.
type Directive struct {
	Speed    float64
	HasSpeed bool

	Format Format
	// FormatExplicit is set when the caption named the format, even if it is the default.
	FormatExplicit bool
}
