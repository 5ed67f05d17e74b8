package eligibility

import (
	"careflow-service/internal/pkg/constvars"

	"github.com/expr-lang/expr"
	"go.uber.org/zap"
)

// AllowedIfEnv is the fixed set of identifiers an allowedIf expression
// may reference. Expressions are comparison/boolean logic over these
// values only; there is no access to anything else in the process.
type AllowedIfEnv struct {
	PatientUUID           string
	ProgramUUID           string
	EnrollmentUUID        string
	LocationUUID          string
	ActiveEnrollmentCount int
	HasActiveVisit        bool
}

func (e AllowedIfEnv) toMap() map[string]interface{} {
	return map[string]interface{}{
		"patientUuid":           e.PatientUUID,
		"programUuid":           e.ProgramUUID,
		"enrollmentUuid":        e.EnrollmentUUID,
		"locationUuid":          e.LocationUUID,
		"activeEnrollmentCount": e.ActiveEnrollmentCount,
		"hasActiveVisit":        e.HasActiveVisit,
	}
}

// RuleEvaluator evaluates allowedIf expressions from the eligibility
// documents. The rules are advisory: an expression that fails to
// compile, to run, or to produce a boolean keeps the visit type
// allowed, with a warning, so a typo in the ETL config can never lock
// clinicians out.
type RuleEvaluator struct {
	Log *zap.Logger
}

func NewRuleEvaluator(logger *zap.Logger) *RuleEvaluator {
	return &RuleEvaluator{Log: logger}
}

// AllowedIf evaluates one expression. An empty expression is allowed.
func (e *RuleEvaluator) AllowedIf(expression string, env AllowedIfEnv) bool {
	if expression == "" {
		return true
	}

	envMap := env.toMap()
	program, err := expr.Compile(expression, expr.Env(envMap), expr.AsBool())
	if err != nil {
		e.Log.Warn("RuleEvaluator.AllowedIf expression does not compile, allowing",
			zap.String(constvars.LoggingExpressionKey, expression),
			zap.Error(err),
		)
		return true
	}

	out, err := expr.Run(program, envMap)
	if err != nil {
		e.Log.Warn("RuleEvaluator.AllowedIf expression failed to evaluate, allowing",
			zap.String(constvars.LoggingExpressionKey, expression),
			zap.Error(err),
		)
		return true
	}

	allowed, ok := out.(bool)
	if !ok {
		e.Log.Warn("RuleEvaluator.AllowedIf expression did not yield a boolean, allowing",
			zap.String(constvars.LoggingExpressionKey, expression),
		)
		return true
	}
	return allowed
}
