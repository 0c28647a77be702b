package descriptor

import (
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type loggedOverride uint16

func TestDebugLogging(t *testing.T) {
	type unmapped struct{ X string }

	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() {
		SetLogger(zap.NewNop())
		RegisterCanonical(reflect.TypeFor[loggedOverride](), nil)
	})

	Register[loggedOverride](Of[uint32]())
	Of[unmapped]()

	var got []string
	for _, e := range logs.FilterLevelExact(zapcore.DebugLevel).All() {
		got = append(got, e.Message)
	}
	for _, want := range []string{"registered canonical", "no canonical rule"} {
		found := false
		for _, msg := range got {
			if strings.Contains(msg, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no debug entry containing %q in %q", want, got)
		}
	}
}
