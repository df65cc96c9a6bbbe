package task

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/skyfetch/internal/domain"
	"github.com/shaiso/skyfetch/internal/format"
	"github.com/shaiso/skyfetch/internal/pipeline"
	"github.com/shaiso/skyfetch/internal/source"
	"github.com/shaiso/skyfetch/internal/storage"
)

// memPackets — фейковый PacketWriter.
type memPackets struct {
	got []domain.Packet
}

func (m *memPackets) InsertPacket(ctx context.Context, area string, pkt domain.Packet) error {
	m.got = append(m.got, pkt)
	return nil
}

func testFactory(t *testing.T, db PacketWriter) (*Factory, *storage.Fs) {
	t.Helper()

	fs, err := storage.NewFs(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}

	return NewFactory(Deps{
		Sources:   source.NewRegistry(source.RegistryConfig{}),
		Converter: format.NewConverter(nil),
		Fs:        fs,
		Packets:   db,
	}), fs
}

func rawPacket(payload string) domain.Packet {
	return domain.Packet{Source: "test", Format: domain.FormatRaw, Payload: []byte(payload), TS: time.Now()}
}

func TestFactory_ParamValidation(t *testing.T) {
	factory, _ := testFactory(t, nil)

	missing := []domain.TaskSpec{
		{Kind: domain.KindFetch},
		{Kind: domain.KindStream},
		{Kind: domain.KindRead},
		{Kind: domain.KindConvert},
		{Kind: domain.KindMessage},
		{Kind: domain.KindSave},
	}
	for _, spec := range missing {
		if _, err := factory.Make(spec); !errors.Is(err, ErrMissingParam) {
			t.Errorf("%s without params: expected ErrMissingParam, got %v", spec.Kind, err)
		}
	}

	if _, err := factory.Make(domain.TaskSpec{
		Kind:   domain.KindConvert,
		Params: map[string]string{"to": "xml"},
	}); err == nil {
		t.Error("convert(to=xml): expected error")
	}

	if _, err := factory.Make(domain.TaskSpec{
		Kind:   domain.KindConvert,
		Params: map[string]string{"to": "raw"},
	}); err == nil {
		t.Error("convert(to=raw): expected error")
	}

	if _, err := factory.Make(domain.TaskSpec{
		Kind:   domain.KindFetch,
		Params: map[string]string{"site": "nowhere"},
	}); !errors.Is(err, source.ErrSiteNotFound) {
		t.Error("fetch(site=nowhere): expected ErrSiteNotFound")
	}

	if _, err := factory.Make(domain.TaskSpec{Kind: domain.KindStore}); !errors.Is(err, ErrDatabaseNotConfigured) {
		t.Error("store without db: expected ErrDatabaseNotConfigured")
	}

	if _, err := factory.Make(domain.TaskSpec{Kind: "explode"}); err == nil {
		t.Error("unknown kind: expected error")
	}
}

func TestFactory_CapabilitiesMatchRegistry(t *testing.T) {
	db := &memPackets{}
	factory, _ := testFactory(t, db)

	params := map[domain.Kind]map[string]string{
		domain.KindRead:    {"path": "/tmp/x"},
		domain.KindConvert: {"to": "json"},
		domain.KindMessage: {"msg": "hello"},
		domain.KindSave:    {"out": "/tmp/y"},
	}

	for _, info := range domain.Kinds() {
		if info.Name == domain.KindFetch || info.Name == domain.KindStream {
			continue // требуют настроенного site
		}

		task, err := factory.Make(domain.TaskSpec{Kind: info.Name, Params: params[info.Name]})
		if err != nil {
			t.Errorf("%s: %v", info.Name, err)
			continue
		}

		var got domain.Capability
		switch task.(type) {
		case pipeline.Producer:
			got = domain.CapabilityProducer
		case pipeline.Filter:
			got = domain.CapabilityFilter
		case pipeline.Consumer:
			got = domain.CapabilityConsumer
		default:
			t.Errorf("%s: implements no capability interface", info.Name)
			continue
		}
		if got != info.Capability {
			t.Errorf("%s: registry says %s, implementation is %s", info.Name, info.Capability, got)
		}
	}
}

func TestReadTask_EmitsFileAsPacket(t *testing.T) {
	factory, _ := testFactory(t, nil)

	path := filepath.Join(t.TempDir(), "in.csv")
	if err := os.WriteFile(path, []byte("time,icao24\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	task, err := factory.Make(domain.TaskSpec{
		Kind:   domain.KindRead,
		Params: map[string]string{"path": path, "format": "csv"},
	})
	if err != nil {
		t.Fatal(err)
	}

	out := make(chan domain.Packet, 1)
	if err := task.(pipeline.Producer).Generate(context.Background(), out); err != nil {
		t.Fatalf("generate: %v", err)
	}

	pkt := <-out
	if pkt.Format != domain.FormatCSV || string(pkt.Payload) != "time,icao24\n" {
		t.Errorf("unexpected packet: %+v", pkt)
	}
}

func TestSaveTask_WritesAndTruncates(t *testing.T) {
	factory, _ := testFactory(t, nil)
	out := filepath.Join(t.TempDir(), "nested", "out.dat")

	run := func(payloads ...string) {
		task, err := factory.Make(domain.TaskSpec{
			Kind:   domain.KindSave,
			Params: map[string]string{"out": out},
		})
		if err != nil {
			t.Fatal(err)
		}
		consumer := task.(pipeline.Consumer)
		for _, p := range payloads {
			if err := consumer.Consume(context.Background(), rawPacket(p)); err != nil {
				t.Fatalf("consume: %v", err)
			}
		}
		if err := task.(io.Closer).Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if consumer.Output() != out {
			t.Errorf("output: expected %s, got %s", out, consumer.Output())
		}
	}

	run("aaa", "bbb")
	run("ccc") // повторный запуск обнуляет файл

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ccc" {
		t.Errorf("expected truncate semantics, got %q", data)
	}
}

func TestRecordTask_Appends(t *testing.T) {
	factory, _ := testFactory(t, nil)

	spec := domain.TaskSpec{
		Kind:   domain.KindRecord,
		Params: map[string]string{"area": "drones", "name": "feed.dat"},
	}

	var path string
	for _, payload := range []string{"one", "two"} {
		task, err := factory.Make(spec)
		if err != nil {
			t.Fatal(err)
		}
		consumer := task.(pipeline.Consumer)
		if err := consumer.Consume(context.Background(), rawPacket(payload)); err != nil {
			t.Fatalf("consume: %v", err)
		}
		if err := task.(io.Closer).Close(); err != nil {
			t.Fatal(err)
		}
		path = consumer.Output()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "onetwo" {
		t.Errorf("expected append semantics, got %q", data)
	}
}

func TestArchiveTask_WritesGzip(t *testing.T) {
	factory, _ := testFactory(t, nil)

	task, err := factory.Make(domain.TaskSpec{
		Kind:   domain.KindArchive,
		Params: map[string]string{"area": "archive", "name": "day1"},
	})
	if err != nil {
		t.Fatal(err)
	}

	consumer := task.(pipeline.Consumer)
	for _, p := range []string{"hello ", "world"} {
		if err := consumer.Consume(context.Background(), rawPacket(p)); err != nil {
			t.Fatalf("consume: %v", err)
		}
	}
	if err := task.(io.Closer).Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	path := consumer.Output()
	if !strings.HasSuffix(path, "day1.gz") {
		t.Fatalf("unexpected archive path %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	zr, err := gzip.NewReader(file)
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Errorf("archive content: %q", got)
	}
}

func TestTeeTask_PassesAndCopies(t *testing.T) {
	factory, fs := testFactory(t, nil)

	task, err := factory.Make(domain.TaskSpec{
		Kind:   domain.KindTee,
		Params: map[string]string{"area": "tee", "name": "copy.dat"},
	})
	if err != nil {
		t.Fatal(err)
	}

	filter := task.(pipeline.Filter)
	pkt, err := filter.Process(context.Background(), rawPacket("payload"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if string(pkt.Payload) != "payload" {
		t.Errorf("tee must pass packet through, got %q", pkt.Payload)
	}
	if err := task.(io.Closer).Close(); err != nil {
		t.Fatal(err)
	}

	path, err := fs.Path("tee", "copy.dat")
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("tee file not written: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("tee copy content: %q", data)
	}
}

func TestStoreTask_InsertsAndCounts(t *testing.T) {
	db := &memPackets{}
	factory, _ := testFactory(t, db)

	task, err := factory.Make(domain.TaskSpec{
		Kind:   domain.KindStore,
		Params: map[string]string{"area": "adsb"},
	})
	if err != nil {
		t.Fatal(err)
	}

	consumer := task.(pipeline.Consumer)
	for i := 0; i < 3; i++ {
		if err := consumer.Consume(context.Background(), rawPacket("x")); err != nil {
			t.Fatalf("consume: %v", err)
		}
	}

	if len(db.got) != 3 {
		t.Errorf("expected 3 inserts, got %d", len(db.got))
	}
	if out := consumer.Output(); !strings.Contains(out, "adsb") || !strings.Contains(out, "3") {
		t.Errorf("unexpected output summary: %q", out)
	}
}

func TestConvertTask_Converts(t *testing.T) {
	factory, _ := testFactory(t, nil)

	task, err := factory.Make(domain.TaskSpec{
		Kind:   domain.KindConvert,
		Params: map[string]string{"to": "json"},
	})
	if err != nil {
		t.Fatal(err)
	}

	csv := "time,icao24,callsign,lat,lon,alt,speed,heading,vrate\n1,ab,,1,2,3,4,5,6\n"
	pkt := domain.Packet{Source: "s", Format: domain.FormatCSV, Payload: []byte(csv)}

	out, err := task.(pipeline.Filter).Process(context.Background(), pkt)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Format != domain.FormatJSON || !strings.Contains(string(out.Payload), `"icao24":"ab"`) {
		t.Errorf("unexpected conversion: %+v", out)
	}
}

func TestPassThroughFilters(t *testing.T) {
	factory, _ := testFactory(t, nil)

	specs := []domain.TaskSpec{
		{Kind: domain.KindCopy},
		{Kind: domain.KindNothing},
		{Kind: domain.KindMessage, Params: map[string]string{"msg": "beep"}},
	}

	for _, spec := range specs {
		task, err := factory.Make(spec)
		if err != nil {
			t.Fatalf("%s: %v", spec.Kind, err)
		}
		in := rawPacket("data")
		out, err := task.(pipeline.Filter).Process(context.Background(), in)
		if err != nil {
			t.Fatalf("%s: %v", spec.Kind, err)
		}
		if string(out.Payload) != "data" || out.Format != in.Format {
			t.Errorf("%s must pass packets unchanged", spec.Kind)
		}
	}
}
