package format

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/skyfetch/internal/domain"
)

const testCSV = `time,icao24,callsign,lat,lon,alt,speed,heading,vrate
1756450800,3c6444,DLH9U,48.3538,11.7861,3450.5,182.3,270,-4.2
1756450801,4ca7b2,,51.4706,-0.4619,0,0,0,0
`

func csvPacket(payload string) domain.Packet {
	return domain.Packet{
		Source:  "opensky",
		Format:  domain.FormatCSV,
		Payload: []byte(payload),
		TS:      time.Now(),
	}
}

func TestConvert_CSVToJSONAndBack(t *testing.T) {
	conv := NewConverter(nil)

	jsonPkt, err := conv.Convert(csvPacket(testCSV), domain.FormatJSON)
	if err != nil {
		t.Fatalf("csv→json: %v", err)
	}
	if jsonPkt.Format != domain.FormatJSON {
		t.Errorf("expected json format, got %s", jsonPkt.Format)
	}
	if jsonPkt.Source != "opensky" {
		t.Errorf("source must survive conversion, got %q", jsonPkt.Source)
	}

	vectors, err := DecodeJSON(jsonPkt.Payload)
	if err != nil {
		t.Fatalf("decode converted json: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0].Icao24 != "3c6444" || vectors[0].Callsign != "DLH9U" {
		t.Errorf("vector 0 mangled: %+v", vectors[0])
	}
	if vectors[0].VRate != -4.2 {
		t.Errorf("expected vrate -4.2, got %g", vectors[0].VRate)
	}
	if vectors[1].Callsign != "" {
		t.Errorf("empty callsign must stay empty, got %q", vectors[1].Callsign)
	}

	csvPkt, err := conv.Convert(jsonPkt, domain.FormatCSV)
	if err != nil {
		t.Fatalf("json→csv: %v", err)
	}
	back, err := DecodeCSV(csvPkt.Payload)
	if err != nil {
		t.Fatalf("decode converted csv: %v", err)
	}
	if len(back) != 2 || back[0] != vectors[0] || back[1] != vectors[1] {
		t.Errorf("round trip changed vectors: %+v vs %+v", back, vectors)
	}
}

func TestConvert_SameFormatIsIdentity(t *testing.T) {
	conv := NewConverter(nil)
	pkt := domain.Packet{Format: domain.FormatRaw, Payload: []byte("whatever, not even csv")}

	out, err := conv.Convert(pkt, domain.FormatRaw)
	if err != nil {
		t.Fatalf("identity conversion must not parse: %v", err)
	}
	if string(out.Payload) != string(pkt.Payload) {
		t.Error("identity conversion changed payload")
	}
}

func TestConvert_RawIsTreatedAsCSV(t *testing.T) {
	conv := NewConverter(nil)
	pkt := domain.Packet{Format: domain.FormatRaw, Payload: []byte(testCSV)}

	out, err := conv.Convert(pkt, domain.FormatJSON)
	if err != nil {
		t.Fatalf("raw→json: %v", err)
	}
	if !strings.Contains(string(out.Payload), "3c6444") {
		t.Errorf("converted payload lost data: %s", out.Payload)
	}
}

func TestConvert_BadPayload(t *testing.T) {
	conv := NewConverter(nil)

	cases := []struct {
		name    string
		payload string
	}{
		{"garbage", "not a csv at all\x00\x01"},
		{"wrong header", "a,b,c\n1,2,3\n"},
		{"bad field", "time,icao24,callsign,lat,lon,alt,speed,heading,vrate\nnope,3c6444,,1,2,3,4,5,6\n"},
		{"empty icao24", "time,icao24,callsign,lat,lon,alt,speed,heading,vrate\n1,,,1,2,3,4,5,6\n"},
	}

	for _, c := range cases {
		pkt := domain.Packet{Format: domain.FormatCSV, Payload: []byte(c.payload)}
		if _, err := conv.Convert(pkt, domain.FormatJSON); !errors.Is(err, ErrBadPayload) {
			t.Errorf("%s: expected ErrBadPayload, got %v", c.name, err)
		}
	}
}

func TestConvert_ToRawRejected(t *testing.T) {
	conv := NewConverter(nil)
	if _, err := conv.Convert(csvPacket(testCSV), domain.FormatRaw); err == nil {
		t.Error("expected error converting back to raw")
	}
}
