package wacs

import (
	"encoding/xml"
	"strings"
	"testing"
)

func TestRequestEnvelopeDecoding(t *testing.T) {
	body := `<request method="bet" key="secret-key">
		<params>
			<userId>42</userId>
			<gameId>roulette</gameId>
			<roundId>r-100</roundId>
			<orderId>o-7</orderId>
			<amount>12345</amount>
		</params>
	</request>`

	var req Request
	if err := xml.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if req.Method != "bet" || req.Key != "secret-key" {
		t.Errorf("envelope attrs = %q/%q", req.Method, req.Key)
	}
	if req.Params.UserID != 42 || req.Params.GameID != "roulette" ||
		req.Params.RoundID != "r-100" || req.Params.OrderID != "o-7" {
		t.Errorf("params = %+v", req.Params)
	}
	if req.Params.Amount != 12345 {
		t.Errorf("amount = %d, want minor units 12345", req.Params.Amount)
	}
}

func TestResultEnvelopeEncoding(t *testing.T) {
	out, err := xml.Marshal(success(Returnset{
		UserID:   42,
		Username: "punter",
		Balance:  98765,
	}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	s := string(out)
	for _, want := range []string{
		`<result success="1">`,
		`<returnset>`,
		`<balance>98765</balance>`,
		`<username>punter</username>`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("result envelope missing %q in %s", want, s)
		}
	}
}

func TestFailureEnvelopeEncoding(t *testing.T) {
	out, err := xml.Marshal(failure(codeInsufficient, "insufficient balance"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	s := string(out)
	if !strings.Contains(s, `success="0"`) {
		t.Errorf("failure not marked: %s", s)
	}
	if !strings.Contains(s, `<errorCode>402</errorCode>`) {
		t.Errorf("missing error code: %s", s)
	}
}

func TestAlreadyProcessedMarker(t *testing.T) {
	out, err := xml.Marshal(success(Returnset{Balance: 100, AlreadyProcessed: 1}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `<alreadyProcessed>1</alreadyProcessed>`) {
		t.Errorf("missing alreadyProcessed marker: %s", out)
	}
}

func TestDedupKeyComposition(t *testing.T) {
	p := Params{GameID: "g", RoundID: "r", OrderID: "o"}
	if got := dedupKey(p); got != "g:r:o" {
		t.Errorf("dedupKey = %q, want g:r:o", got)
	}
}
