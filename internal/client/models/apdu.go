package models

// CommandCount is a CLA+INS (two byte) command code and its frequency.
type CommandCount struct {
	ClaIns string
	Count  int64
}

// HeaderCount is a CLA+INS+P1+P2 (four byte) header and its frequency.
type HeaderCount struct {
	Header4 string
	Count   int64
}

// StatusWordCount is a card response status word and its frequency.
type StatusWordCount struct {
	SW    string
	Count int64
}

// APDUStats is the aggregated APDU view over a time range. The console does
// not interpret the codes; it only displays them.
type APDUStats struct {
	From                 string
	To                   string
	Highlight            map[string]int64
	CommandsReader       []CommandCount
	CommandsReaderHeader []HeaderCount
	ResponsesCardSW      []StatusWordCount
	ParsedAPDU           int64
	ParseErrors          int64
	TotalLogRowsScanned  *int64
}
