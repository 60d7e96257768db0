package domain

// AnswerKind classifies how an answer was produced.
type AnswerKind string

const (
	// AnswerKindGenerated means the answer came from the generation model.
	AnswerKindGenerated AnswerKind = "generated"
	// AnswerKindCanned means the question matched a fixed conversational input.
	AnswerKindCanned AnswerKind = "canned"
	// AnswerKindEmptyQuestion means the question was blank after trimming.
	AnswerKindEmptyQuestion AnswerKind = "empty_question"
	// AnswerKindGenerationFailed means the generation call failed.
	AnswerKindGenerationFailed AnswerKind = "generation_failed"
)

// User-facing messages. The exact wording is part of the API contract.
const (
	MsgEmptyQuestion    = "Please enter your question."
	MsgGenerationFailed = "Unable to get an answer."
	MsgYoureWelcome     = "You're welcome!"
	MsgGoodbye          = "Goodbye!"
)

// Answer is the result of one question, scoped to a single request.
type Answer struct {
	Text string
	Kind AnswerKind
	// OK is true when Text is a usable answer (generated or canned) rather
	// than a failure message.
	OK bool
}

// GeneratedAnswer wraps model output as a successful answer.
func GeneratedAnswer(text string) Answer {
	return Answer{Text: text, Kind: AnswerKindGenerated, OK: true}
}

// CannedAnswer wraps a fixed reply for a recognized conversational input.
func CannedAnswer(text string) Answer {
	return Answer{Text: text, Kind: AnswerKindCanned, OK: true}
}

// FailedAnswer wraps a failure of the given kind with its user-facing message.
func FailedAnswer(kind AnswerKind, text string) Answer {
	return Answer{Text: text, Kind: kind, OK: false}
}
