package wacs

import "encoding/xml"

// Request envelope: a single POST body carrying the method name and
// the provider key as attributes. All amounts cross the wire in minor
// units (hundredths); conversion to major units happens in this
// package only.
type Request struct {
	XMLName xml.Name `xml:"request"`
	Method  string   `xml:"method,attr"`
	Key     string   `xml:"key,attr"`
	Params  Params   `xml:"params"`
}

type Params struct {
	UserID  uint   `xml:"userId"`
	GameID  string `xml:"gameId"`
	RoundID string `xml:"roundId"`
	OrderID string `xml:"orderId"`
	// Amount is the stake for bet, the total return for win, in
	// minor units.
	Amount int64 `xml:"amount"`
}

type Result struct {
	XMLName   xml.Name  `xml:"result"`
	Success   int       `xml:"success,attr"`
	Returnset Returnset `xml:"returnset"`
}

type Returnset struct {
	UserID           uint   `xml:"userId,omitempty"`
	Username         string `xml:"username,omitempty"`
	Balance          int64  `xml:"balance"` // minor units
	AlreadyProcessed int    `xml:"alreadyProcessed,omitempty"`
	ErrorCode        int    `xml:"errorCode,omitempty"`
	ErrorMessage     string `xml:"errorMessage,omitempty"`
}

func success(rs Returnset) Result {
	return Result{Success: 1, Returnset: rs}
}

func failure(code int, msg string) Result {
	return Result{Success: 0, Returnset: Returnset{ErrorCode: code, ErrorMessage: msg}}
}
