package reconcile

import (
	"fmt"

	"github.com/openconsult/consultsum/internal/model"
)

// testRecord builds a record with the ID scheme used by ingestion.
func testRecord(responseID, questionID, choice, answer string) model.Record {
	return model.Record{
		RecordID:         responseID + ":" + questionID,
		ResponseID:       responseID,
		OrganisationName: "Org " + responseID,
		QuestionID:       questionID,
		ChoiceValue:      choice,
		AnswerText:       answer,
		Excerpt:          answer,
	}
}

// stanceSplitUniverse builds a universe with the given number of support and
// concern records.
func stanceSplitUniverse(support, concern int) *Universe {
	var records []model.Record
	for i := 0; i < support; i++ {
		records = append(records, testRecord(fmt.Sprintf("S%d", i+1), "Q01", "Strongly agree", "We welcome this proposal."))
	}
	for i := 0; i < concern; i++ {
		records = append(records, testRecord(fmt.Sprintf("C%d", i+1), "Q01", "Strongly disagree", "We oppose this proposal."))
	}
	return NewUniverse(records)
}
