package semantics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplates(t *testing.T) {
	t.Run("default template is session/semi-relaxed/network", func(t *testing.T) {
		s := Default()
		assert.Equal(t, ConsistencySession, Consistency(s.Get(AxisConsistency)))
		assert.Equal(t, OrderingSemiRelaxed, s.Ordering())
		assert.Equal(t, SafetyNetwork, s.Safety())
	})

	t.Run("posix template is strict/storage", func(t *testing.T) {
		s := NewBuilder(TemplatePOSIX).Done()
		assert.Equal(t, OrderingStrict, s.Ordering())
		assert.Equal(t, SafetyStorage, s.Safety())
	})

	t.Run("temporary template is relaxed/none", func(t *testing.T) {
		s := NewBuilder(TemplateTemporary).Done()
		assert.Equal(t, OrderingRelaxed, s.Ordering())
		assert.Equal(t, SafetyNone, s.Safety())
	})
}

func TestSafetyOverride(t *testing.T) {
	t.Run("override strengthens persistency-derived safety", func(t *testing.T) {
		s := NewBuilder(TemplateTemporary).SetSafety(SafetyStorage).Done()
		assert.Equal(t, SafetyStorage, s.Safety())
	})

	t.Run("override never downgrades", func(t *testing.T) {
		s := NewBuilder(TemplatePOSIX).SetSafety(SafetyNone).Done()
		assert.Equal(t, SafetyStorage, s.Safety(), "storage safety from persistency must not be downgraded")
	})
}

func TestBuilderAfterDonePanics(t *testing.T) {
	b := NewBuilder(TemplateDefault)
	b.Done()
	assert.Panics(t, func() { b.SetOrdering(OrderingStrict) })
}

func TestBuilderChaining(t *testing.T) {
	s := NewBuilder(TemplateDefault).
		SetOrdering(OrderingRelaxed).
		SetConsistency(ConsistencyEventual).
		Done()

	assert.Equal(t, OrderingRelaxed, s.Ordering())
	assert.Equal(t, ConsistencyEventual, Consistency(s.Get(AxisConsistency)))
}
