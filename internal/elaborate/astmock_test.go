package elaborate_test

import (
	"testing"

	gomock "github.com/golang/mock/gomock"
	"github.com/sarchlab/grhc/internal/astiface"
	"github.com/sarchlab/grhc/internal/astiface/astfixture"
	"github.com/sarchlab/grhc/internal/astiface/astmock"
	"github.com/sarchlab/grhc/internal/diag"
	"github.com/sarchlab/grhc/internal/elaborate"
)

// TestElaborateDrivenByMockModule exercises the Elaborator against a
// gomock double rather than a plain astfixture struct, confirming it only
// ever calls astiface.Module through its declared interface (Name/Params/
// Ports/Items) and never type-asserts down to a concrete implementation.
func TestElaborateDrivenByMockModule(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := astmock.NewMockModule(ctrl)
	m.EXPECT().Name().Return("empty").AnyTimes()
	m.EXPECT().Params().Return(nil).AnyTimes()
	m.EXPECT().Ports().Return(nil).AnyTimes()
	m.EXPECT().Items().Return(nil).AnyTimes()

	d := diag.New()
	e := elaborate.New(d)
	nl, err := e.Elaborate(astfixture.Unit{Mods: []astiface.Module{m}})
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}
	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", d.All())
	}
	tops := nl.TopGraphs()
	if len(tops) != 1 {
		t.Fatalf("expected 1 top graph, got %d", len(tops))
	}
}
