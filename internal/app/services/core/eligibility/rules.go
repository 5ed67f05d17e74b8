package eligibility

import (
	"careflow-service/internal/pkg/emr_dto"
	"careflow-service/internal/pkg/exceptions"
)

// This package is the interpreter for the ETL-sourced program rules.
// The rules are configuration data edited by clinical administrators,
// so everything here is permissive by default: a program without a
// config entry has no restrictions, and only rules that are present
// and recognized can block anything.

// ActiveEnrollments filters to enrollments without a completion date.
// Compatibility and visit gating only ever look at this set.
func ActiveEnrollments(enrollments []emr_dto.Enrollment) []emr_dto.Enrollment {
	active := make([]emr_dto.Enrollment, 0, len(enrollments))
	for _, enrollment := range enrollments {
		if enrollment.Active() {
			active = append(active, enrollment)
		}
	}
	return active
}

// ComputeIncompatibilities resolves, for each catalog program, the
// display names of active enrollments whose program appears in its
// configured incompatibleWith set. Programs without a config entry
// map to nothing.
func ComputeIncompatibilities(programs []emr_dto.Program, activeEnrollments []emr_dto.Enrollment, cfg emr_dto.PatientProgramConfig) map[string][]string {
	activeDisplayByProgram := make(map[string]string, len(activeEnrollments))
	for _, enrollment := range activeEnrollments {
		activeDisplayByProgram[enrollment.Program.UUID] = enrollment.Program.Display
	}

	blocking := make(map[string][]string)
	for _, program := range programs {
		entry, ok := cfg[program.UUID]
		if !ok {
			continue
		}
		for _, incompatibleUUID := range entry.IncompatibleWith {
			if display, active := activeDisplayByProgram[incompatibleUUID]; active {
				blocking[program.UUID] = append(blocking[program.UUID], display)
			}
		}
	}
	return blocking
}

// ValidateEnrollmentQuestions walks the program's required questions in
// configured order against the submitted answers, keyed by qtype. The
// first violation wins: an unanswered question fails as MISSING_ANSWER,
// an enrollIf mismatch as NOT_ELIGIBLE carrying the question's own
// message. Related questions nest one level and are only required when
// visible for the parent's answer.
func ValidateEnrollmentQuestions(programUUID string, cfg emr_dto.PatientProgramConfig, answers map[string]string) error {
	entry, ok := cfg[programUUID]
	if !ok || entry.EnrollmentOptions == nil {
		return nil
	}

	for _, question := range entry.EnrollmentOptions.RequiredProgramQuestions {
		parentAnswer, err := validateQuestion(question, answers)
		if err != nil {
			return err
		}

		for _, related := range question.RelatedQuestions {
			if !QuestionVisible(related, parentAnswer) {
				continue
			}
			if _, err := validateQuestion(related, answers); err != nil {
				return err
			}
		}
	}
	return nil
}

// QuestionVisible reports whether a related question is shown for the
// parent's answer. No showIfParent means always shown.
func QuestionVisible(question emr_dto.Question, parentAnswer string) bool {
	return question.ShowIfParent == "" || question.ShowIfParent == parentAnswer
}

func validateQuestion(question emr_dto.Question, answers map[string]string) (string, error) {
	answer := answers[question.QType]
	if answer == "" {
		return "", exceptions.ErrMissingAnswer(question.Name)
	}
	if question.EnrollIf != "" && answer != question.EnrollIf {
		return "", exceptions.ErrNotEligible(question.Name, question.NotEligibleMessage)
	}
	return answer, nil
}
