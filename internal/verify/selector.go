package verify

import (
	"context"
	"unicode/utf8"

	"idverify/internal/imageproc"
)

// Failure messages returned to end users, in the service's original
// wording.
const (
	msgStudentInvalid = "인증할 수 없는 학생증입니다."
	msgStudentError   = "학생증 처리 중 오류가 발생했습니다."
	msgLicenseInvalid = "인증할 수 없는 면허증입니다."
	msgLicenseError   = "면허증 처리 중 오류가 발생했습니다."
)

// attemptOutcome records one pipeline pass of the best-of-N search. Exactly
// one of result and err is set.
type attemptOutcome struct {
	level  imageproc.Level
	result *ValidationResult
	err    error
}

// VerifyStudentCard validates a student-card image. The unmodified image is
// tried first; when that pass fails, comes back invalid, or reads too
// little text, every enhancement level is tried and the best outcome is
// selected: a valid result beats any invalid one, longer reconstructed text
// beats shorter, and remaining ties break toward the earlier attempt.
//
// The method never returns an error. Pipeline failures on every attempt
// collapse into an invalid result with a processing-failure message.
func (s *Service) VerifyStudentCard(ctx context.Context, imagePath string) *ValidationResult {
	outcomes := make([]attemptOutcome, 0, 1+len(imageproc.FallbackLevels()))

	first, err := s.verifyStudentAttempt(ctx, imagePath)
	if err != nil {
		s.log.Warn().Err(err).Str("level", string(imageproc.LevelNone)).Msg("Student card attempt failed")
	} else if first.Valid && utf8.RuneCountInString(first.Text) > s.cfg.MinTextLength {
		return first
	}
	outcomes = append(outcomes, attemptOutcome{level: imageproc.LevelNone, result: first, err: err})

	for _, level := range imageproc.FallbackLevels() {
		enhanced, err := imageproc.Enhance(imagePath, level)
		if err != nil {
			s.log.Warn().Err(err).Str("level", string(level)).Msg("Enhancement failed")
			outcomes = append(outcomes, attemptOutcome{level: level, err: err})
			continue
		}

		result, err := s.verifyStudentAttempt(ctx, enhanced)
		imageproc.Cleanup(enhanced)
		if err != nil {
			s.log.Warn().Err(err).Str("level", string(level)).Msg("Student card attempt failed")
		}
		outcomes = append(outcomes, attemptOutcome{level: level, result: result, err: err})
	}

	best := selectBest(outcomes)
	if best == nil {
		return s.failureResult(DocumentTypeStudent, msgStudentError)
	}
	if !best.Valid {
		best.Message = msgStudentInvalid
	}
	return best
}

// selectBest applies the selection rule over the collected outcomes.
// Errored attempts never win; nil means every attempt errored.
func selectBest(outcomes []attemptOutcome) *ValidationResult {
	var best *ValidationResult
	for _, o := range outcomes {
		if o.err != nil || o.result == nil {
			continue
		}
		if best == nil {
			best = o.result
			continue
		}
		if o.result.Valid != best.Valid {
			if o.result.Valid {
				best = o.result
			}
			continue
		}
		if utf8.RuneCountInString(o.result.Text) > utf8.RuneCountInString(best.Text) {
			best = o.result
		}
	}
	return best
}

// VerifyLicense validates a pharmacist-license image. Licenses get a single
// pipeline pass; the enhancement search exists for the low-contrast plastic
// student cards and has not been needed for printed licenses.
//
// The method never returns an error.
func (s *Service) VerifyLicense(ctx context.Context, imagePath string) *ValidationResult {
	result, err := s.verifyLicenseAttempt(ctx, imagePath)
	if err != nil {
		s.log.Warn().Err(err).Msg("License attempt failed")
		return s.failureResult(DocumentTypeLicense, msgLicenseError)
	}
	if !result.Valid {
		result.Message = msgLicenseInvalid
	}
	return result
}
