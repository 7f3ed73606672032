package amqp

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"revenueqa/internal/nlq"
)

// QuestionMessage asks the worker to answer one question.
type QuestionMessage struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Timestamp time.Time `json:"timestamp"`
}

func NewQuestionMessage(question string) *QuestionMessage {
	return &QuestionMessage{
		ID:        uuid.NewString(),
		Question:  question,
		Timestamp: time.Now(),
	}
}

func (m *QuestionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// QuestionMessageFromJSON decodes a question. A body without a question
// text is rejected.
func QuestionMessageFromJSON(data []byte) (*QuestionMessage, error) {
	var msg QuestionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(msg.Question) == "" && msg.ID == "" {
		return nil, errors.New("question message has neither id nor question")
	}
	return &msg, nil
}

// AnswerMessage is the reply to a QuestionMessage.
type AnswerMessage struct {
	ID              string             `json:"id"`
	Question        string             `json:"question"`
	Answer          string             `json:"answer,omitempty"`
	Clauses         []nlq.ClauseResult `json:"clauses,omitempty"`
	SnapshotVersion uint64             `json:"snapshot_version,omitempty"`
	Error           string             `json:"error,omitempty"`
	Timestamp       time.Time          `json:"timestamp"`
}

func (m *AnswerMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AnswerMessageFromJSON(data []byte) (*AnswerMessage, error) {
	var msg AnswerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
