package model

// ColumnSpec identifies one survey column after header normalization.
// UniqueName carries a "__N" suffix when the raw header text repeats.
type ColumnSpec struct {
	UniqueName string `json:"unique_name"`
	RawName    string `json:"raw_name"`
	Index      int    `json:"index"`
}

// QuestionDefinition is one logical consultation question inferred from the
// flat survey column list. Supplemental columns hold free-text follow-ups
// ("If not, please explain...") attached to the primary choice column.
type QuestionDefinition struct {
	QuestionID          string       `json:"question_id"`
	QuestionText        string       `json:"question_text"`
	Section             string       `json:"section"`
	PrimaryColumn       ColumnSpec   `json:"primary_column"`
	SupplementalColumns []ColumnSpec `json:"supplemental_columns,omitempty"`
}

// Record is one atomic response record: one organisation answering one
// question. RecordID has the form "<response_id>:<question_id>" and is the
// identifier cited as evidence by summaries. Records are immutable once
// created by ingestion.
type Record struct {
	RecordID         string `json:"record_id"`
	ResponseID       string `json:"response_id"`
	OrganisationName string `json:"organisation_name"`
	OrganisationType string `json:"organisation_type"`
	Region           string `json:"region"`
	QuestionID       string `json:"question_id"`
	QuestionText     string `json:"question_text"`
	Section          string `json:"section"`
	ChoiceValue      string `json:"choice_value,omitempty"`
	AnswerText       string `json:"answer_text"`
	Excerpt          string `json:"excerpt"`
}

// OrganisationCatalog is the Approach 1 input: every record one organisation
// submitted, plus coverage counts for the metrics step.
type OrganisationCatalog struct {
	ResponseID        string   `json:"response_id"`
	OrganisationName  string   `json:"organisation_name"`
	OrganisationType  string   `json:"organisation_type"`
	Region            string   `json:"region"`
	AnsweredQuestions int      `json:"answered_questions"`
	TotalQuestions    int      `json:"total_questions"`
	Items             []Record `json:"items"`
}

// QuestionSlice is the Approach 2 input: every record answering one question
// across organisations.
type QuestionSlice struct {
	Question QuestionDefinition `json:"question"`
	Items    []Record           `json:"items"`
}

// ConsultationData holds the raw parsed survey export.
type ConsultationData struct {
	Columns []ColumnSpec        `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// PreparedData is the normalized dataset reused across summary calls.
type PreparedData struct {
	Data      ConsultationData     `json:"consultation_data"`
	Questions []QuestionDefinition `json:"questions"`
	Items     []Record             `json:"response_items"`
}
