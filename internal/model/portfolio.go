package model

// Portfolio is the full hierarchy as exported to back-office reports.
type Portfolio struct {
	Contracts  []Contract
	Appendices []Appendix
	Lines      []Line
	Products   []Product
}
