package eligibility

import (
	"testing"

	"careflow-service/internal/pkg/emr_dto"
	"careflow-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	programHIV      = "11111111-1111-1111-1111-111111111111"
	programTB       = "22222222-2222-2222-2222-222222222222"
	programMCH      = "33333333-3333-3333-3333-333333333333"
	programPalliate = "44444444-4444-4444-4444-444444444444"
)

func catalog() []emr_dto.Program {
	return []emr_dto.Program{
		{UUID: programHIV, Name: "HIV Care", Display: "HIV Care"},
		{UUID: programTB, Name: "TB Treatment", Display: "TB Treatment"},
		{UUID: programMCH, Name: "Maternal Child Health", Display: "Maternal Child Health"},
		{UUID: programPalliate, Name: "Palliative Care", Display: "Palliative Care"},
	}
}

func TestActiveEnrollments(t *testing.T) {
	enrollments := []emr_dto.Enrollment{
		{UUID: "e1", Program: emr_dto.DisplayRef{UUID: programHIV, Display: "HIV Care"}, DateEnrolled: "2024-01-01"},
		{UUID: "e2", Program: emr_dto.DisplayRef{UUID: programTB, Display: "TB Treatment"}, DateEnrolled: "2023-06-01", DateCompleted: "2023-12-31"},
		{UUID: "e3", Program: emr_dto.DisplayRef{UUID: programMCH, Display: "Maternal Child Health"}, DateEnrolled: "2024-02-15"},
	}

	active := ActiveEnrollments(enrollments)

	require.Len(t, active, 2)
	assert.Equal(t, "e1", active[0].UUID)
	assert.Equal(t, "e3", active[1].UUID)
}

func TestComputeIncompatibilities(t *testing.T) {
	activeHIV := []emr_dto.Enrollment{
		{UUID: "e1", Program: emr_dto.DisplayRef{UUID: programHIV, Display: "HIV Care"}, DateEnrolled: "2024-01-01"},
	}

	t.Run("active incompatible enrollment blocks with its display name", func(t *testing.T) {
		cfg := emr_dto.PatientProgramConfig{
			programTB: {IncompatibleWith: []string{programHIV}},
		}

		blocking := ComputeIncompatibilities(catalog(), activeHIV, cfg)

		require.Contains(t, blocking, programTB)
		assert.Equal(t, []string{"HIV Care"}, blocking[programTB])
		assert.NotContains(t, blocking, programMCH)
	})

	t.Run("missing config entry is permissive", func(t *testing.T) {
		blocking := ComputeIncompatibilities(catalog(), activeHIV, emr_dto.PatientProgramConfig{})

		assert.Empty(t, blocking)
	})

	t.Run("incompatibleWith pointing at inactive program does not block", func(t *testing.T) {
		completed := []emr_dto.Enrollment{
			{UUID: "e2", Program: emr_dto.DisplayRef{UUID: programHIV, Display: "HIV Care"}, DateEnrolled: "2023-01-01", DateCompleted: "2023-12-31"},
		}
		cfg := emr_dto.PatientProgramConfig{
			programTB: {IncompatibleWith: []string{programHIV}},
		}

		blocking := ComputeIncompatibilities(catalog(), ActiveEnrollments(completed), cfg)

		assert.Empty(t, blocking)
	})

	t.Run("multiple blockers all listed", func(t *testing.T) {
		activeTwo := []emr_dto.Enrollment{
			{UUID: "e1", Program: emr_dto.DisplayRef{UUID: programHIV, Display: "HIV Care"}, DateEnrolled: "2024-01-01"},
			{UUID: "e3", Program: emr_dto.DisplayRef{UUID: programMCH, Display: "Maternal Child Health"}, DateEnrolled: "2024-02-01"},
		}
		cfg := emr_dto.PatientProgramConfig{
			programPalliate: {IncompatibleWith: []string{programHIV, programMCH}},
		}

		blocking := ComputeIncompatibilities(catalog(), activeTwo, cfg)

		assert.Equal(t, []string{"HIV Care", "Maternal Child Health"}, blocking[programPalliate])
	})
}

func questionConfig() emr_dto.PatientProgramConfig {
	return emr_dto.PatientProgramConfig{
		programHIV: {
			EnrollmentOptions: &emr_dto.EnrollmentOptions{
				RequiredProgramQuestions: []emr_dto.Question{
					{
						QType:              "consent",
						Name:               "Patient consent",
						EnrollIf:           "yes",
						NotEligibleMessage: "Consent is required to join this program",
						RelatedQuestions: []emr_dto.Question{
							{
								QType:        "guardian_consent",
								Name:         "Guardian consent",
								ShowIfParent: "yes",
								EnrollIf:     "yes",
							},
						},
					},
					{
						QType: "referral_source",
						Name:  "Referral source",
					},
				},
			},
		},
	}
}

func TestValidateEnrollmentQuestions(t *testing.T) {
	t.Run("all answered and eligible passes", func(t *testing.T) {
		answers := map[string]string{
			"consent":          "yes",
			"guardian_consent": "yes",
			"referral_source":  "clinic",
		}

		err := ValidateEnrollmentQuestions(programHIV, questionConfig(), answers)

		assert.NoError(t, err)
	})

	t.Run("unanswered required question fails with MISSING_ANSWER", func(t *testing.T) {
		answers := map[string]string{
			"guardian_consent": "yes",
			"referral_source":  "clinic",
		}

		err := ValidateEnrollmentQuestions(programHIV, questionConfig(), answers)

		require.Error(t, err)
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, exceptions.KindMissingAnswer, customErr.Kind)
		assert.Contains(t, customErr.ClientMessage, "Patient consent")
	})

	t.Run("enrollIf mismatch fails with NOT_ELIGIBLE and the program message", func(t *testing.T) {
		answers := map[string]string{
			"consent":         "no",
			"referral_source": "clinic",
		}

		err := ValidateEnrollmentQuestions(programHIV, questionConfig(), answers)

		require.Error(t, err)
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, exceptions.KindNotEligible, customErr.Kind)
		assert.Equal(t, "Consent is required to join this program", customErr.ClientMessage)
	})

	t.Run("hidden related question is not required", func(t *testing.T) {
		cfg := emr_dto.PatientProgramConfig{
			programHIV: {
				EnrollmentOptions: &emr_dto.EnrollmentOptions{
					RequiredProgramQuestions: []emr_dto.Question{
						{
							QType: "transfer_in",
							Name:  "Transferring from another facility",
							RelatedQuestions: []emr_dto.Question{
								{
									QType:        "previous_facility",
									Name:         "Previous facility",
									ShowIfParent: "yes",
								},
							},
						},
					},
				},
			},
		}
		answers := map[string]string{"transfer_in": "no"}

		err := ValidateEnrollmentQuestions(programHIV, cfg, answers)

		assert.NoError(t, err)
	})

	t.Run("visible related question is required", func(t *testing.T) {
		answers := map[string]string{
			"consent":         "yes",
			"referral_source": "clinic",
		}

		err := ValidateEnrollmentQuestions(programHIV, questionConfig(), answers)

		require.Error(t, err)
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, exceptions.KindMissingAnswer, customErr.Kind)
		assert.Contains(t, customErr.ClientMessage, "Guardian consent")
	})

	t.Run("first failure short-circuits", func(t *testing.T) {
		// Both questions unanswered: the error must name the first one.
		err := ValidateEnrollmentQuestions(programHIV, questionConfig(), map[string]string{})

		require.Error(t, err)
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Contains(t, customErr.ClientMessage, "Patient consent")
	})

	t.Run("program without config is permissive", func(t *testing.T) {
		err := ValidateEnrollmentQuestions(programTB, questionConfig(), map[string]string{})

		assert.NoError(t, err)
	})

	t.Run("related question answer does not satisfy the parent", func(t *testing.T) {
		answers := map[string]string{
			"consent":          "yes",
			"guardian_consent": "no",
			"referral_source":  "clinic",
		}

		err := ValidateEnrollmentQuestions(programHIV, questionConfig(), answers)

		require.Error(t, err)
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, exceptions.KindNotEligible, customErr.Kind)
	})
}

func TestQuestionVisible(t *testing.T) {
	question := emr_dto.Question{QType: "q", Name: "Q", ShowIfParent: "yes"}

	assert.True(t, QuestionVisible(question, "yes"))
	assert.False(t, QuestionVisible(question, "no"))
	assert.False(t, QuestionVisible(question, ""))

	unconditional := emr_dto.Question{QType: "q", Name: "Q"}
	assert.True(t, QuestionVisible(unconditional, "anything"))
}
