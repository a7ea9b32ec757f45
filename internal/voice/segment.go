// Package voice maps speech recognition segments onto the transaction draft.
//
// A segment carries a classified intent, the entities extracted so far and a
// finality flag. Segments for the same utterance arrive repeatedly while the
// user speaks; only the final one may create or cancel a transaction.
package voice

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

type Intent string

const (
	IntentAddExpense        Intent = "add_expense"
	IntentAddIncome         Intent = "add_income"
	IntentCreateTransaction Intent = "create_transaction"
	IntentCancelTransaction Intent = "cancel_transaction"
)

type EntityType string

const (
	EntityAmount   EntityType = "amount"
	EntityCategory EntityType = "category"
	EntityDate     EntityType = "date"
)

type (
	Entity struct {
		Type  EntityType `json:"type"`
		Value string     `json:"value"`
	}

	Word struct {
		Value string `json:"value"`
		Index int    `json:"index"`
	}

	IntentInfo struct {
		Intent  Intent `json:"intent"`
		IsFinal bool   `json:"isFinal"`
	}

	// Segment is one update from the speech recognizer.
	Segment struct {
		ID        int        `json:"id"`
		ContextID string     `json:"contextId"`
		IsFinal   bool       `json:"isFinal"`
		Intent    IntentInfo `json:"intent"`
		Entities  []Entity   `json:"entities"`
		Words     []Word     `json:"words"`
	}
)

// DecodeSegment parses the JSON wire form of a segment.
func DecodeSegment(data []byte) (Segment, error) {
	var seg Segment
	if err := json.Unmarshal(data, &seg); err != nil {
		return Segment{}, fmt.Errorf("decode segment: %w", err)
	}
	return seg, nil
}

// EncodeSegment renders a segment in its JSON wire form.
func EncodeSegment(seg Segment) ([]byte, error) {
	data, err := json.Marshal(seg)
	if err != nil {
		return nil, fmt.Errorf("encode segment: %w", err)
	}
	return data, nil
}

// Transcript joins the recognized words ordered by index. Words sharing an
// index keep their arrival order.
func (s Segment) Transcript() string {
	words := make([]Word, 0, len(s.Words))
	for _, w := range s.Words {
		if w.Value != "" {
			words = append(words, w)
		}
	}
	slices.SortStableFunc(words, func(a, b Word) int { return cmp.Compare(a.Index, b.Index) })

	values := make([]string, len(words))
	for i, w := range words {
		values[i] = w.Value
	}
	return strings.Join(values, " ")
}
