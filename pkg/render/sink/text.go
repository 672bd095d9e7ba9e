package sink

const (
	fontHeightRatio = 0.6
	fontWidthRatio  = 0.9
	fontCharWidth   = 0.55
	fontSizeMin     = 7.0
	fontSizeMax     = 16.0
)

func fontSize(availWidth, availHeight float64, text string) float64 {
	n := max(1, len([]rune(text)))
	byHeight := availHeight * fontHeightRatio
	byWidth := (availWidth * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}
