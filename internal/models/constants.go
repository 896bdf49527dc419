package models

const (
	ContextSeparator = "\n---\n"

	// Markers stripped from the head of each expansion line: "1.", "2)", "-", "*".
	EnumerationRegex = `^\s*(?:\d+\s*[.)]\s*|[-*]\s+)`
)

var (
	// ExpandPromptTemplate asks the model for alternative phrasings of a user
	// question, one per line. Args: variant count, question.
	ExpandPromptTemplate = `You are an AI language model assistant. Your task is to generate %d different versions of the given user question to retrieve relevant documents from a vector database. By generating multiple perspectives on the user question, your goal is to help the user overcome some of the limitations of distance-based similarity search.

Provide these alternative questions as a numbered list, one question per line.

Original question: %s
`

	// AnswerPromptTemplate builds the final synthesis prompt. Args: joined
	// context block, question.
	AnswerPromptTemplate = `Answer the question using only the context provided below. If the context does not contain enough information to answer, say so explicitly rather than guessing. Be verbose and educational in your answer.

Context:
%s

Question: %s

Answer:`
)
