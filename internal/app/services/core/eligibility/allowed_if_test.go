package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.uber.org/zap"
)

func TestRuleEvaluatorAllowedIf(t *testing.T) {
	evaluator := NewRuleEvaluator(zap.NewNop())
	env := AllowedIfEnv{
		PatientUUID:           "p-1",
		ProgramUUID:           "prog-1",
		EnrollmentUUID:        "enr-1",
		LocationUUID:          "loc-1",
		ActiveEnrollmentCount: 2,
		HasActiveVisit:        false,
	}

	t.Run("empty expression allows", func(t *testing.T) {
		assert.True(t, evaluator.AllowedIf("", env))
	})

	t.Run("true comparison allows", func(t *testing.T) {
		assert.True(t, evaluator.AllowedIf(`locationUuid == "loc-1"`, env))
	})

	t.Run("false comparison disallows", func(t *testing.T) {
		assert.False(t, evaluator.AllowedIf(`locationUuid == "loc-9"`, env))
	})

	t.Run("boolean logic over the environment", func(t *testing.T) {
		assert.True(t, evaluator.AllowedIf(`activeEnrollmentCount < 3 && !hasActiveVisit`, env))
		assert.False(t, evaluator.AllowedIf(`activeEnrollmentCount > 5 || hasActiveVisit`, env))
	})

	t.Run("expression that does not compile allows", func(t *testing.T) {
		assert.True(t, evaluator.AllowedIf(`locationUuid ==`, env))
	})

	t.Run("non-boolean expression allows", func(t *testing.T) {
		assert.True(t, evaluator.AllowedIf(`activeEnrollmentCount + 1`, env))
	})

	t.Run("unknown identifier allows", func(t *testing.T) {
		assert.True(t, evaluator.AllowedIf(`patientAge > 18`, env))
	})
}
