package ingest

import (
	"reflect"
	"testing"

	"github.com/openconsult/consultsum/internal/model"
)

func preparedFixture(t *testing.T) model.PreparedData {
	t.Helper()

	data := testData(
		[]string{"R2", "Zenith Power", "Generator", "England", "No", "Too costly", "", "None"},
		[]string{"R1", "Acme Energy", "Network operator", "Wales", "Yes", "Sound approach", "", ""},
	)
	prepared, err := PrepareData(data, 280, "")
	if err != nil {
		t.Fatal(err)
	}
	return prepared
}

func TestOrganisations_SortedByLabel(t *testing.T) {
	prepared := preparedFixture(t)

	got := Organisations(prepared)
	want := []Option{
		{ID: "R1", Label: "Acme Energy (R1)"},
		{ID: "R2", Label: "Zenith Power (R2)"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Organisations = %v, want %v", got, want)
	}
}

func TestQuestionOptions(t *testing.T) {
	prepared := preparedFixture(t)

	got := QuestionOptions(prepared)
	if len(got) != 2 || got[0].ID != "Q01" {
		t.Fatalf("QuestionOptions = %v", got)
	}
	if got[0].Label != "Q01 | Do you agree with the proposal?" {
		t.Errorf("Label = %q", got[0].Label)
	}
}

func TestCatalogFor(t *testing.T) {
	prepared := preparedFixture(t)

	catalog, err := CatalogFor(prepared, "R2")
	if err != nil {
		t.Fatal(err)
	}
	if catalog.OrganisationName != "Zenith Power" || catalog.Region != "England" {
		t.Errorf("unexpected catalog metadata: %+v", catalog)
	}
	if catalog.AnsweredQuestions != 2 || catalog.TotalQuestions != 2 {
		t.Errorf("coverage = %d/%d, want 2/2", catalog.AnsweredQuestions, catalog.TotalQuestions)
	}

	if _, err := CatalogFor(prepared, "unknown"); err == nil {
		t.Error("expected an error for an unknown response ID")
	}
}

func TestSliceFor(t *testing.T) {
	prepared := preparedFixture(t)

	slice, err := SliceFor(prepared, "Q01")
	if err != nil {
		t.Fatal(err)
	}
	if slice.Question.QuestionID != "Q01" {
		t.Errorf("Question = %+v", slice.Question)
	}
	if len(slice.Items) != 2 {
		t.Errorf("expected both organisations to appear, got %d items", len(slice.Items))
	}

	if _, err := SliceFor(prepared, "Q99"); err == nil {
		t.Error("expected an error for an unknown question ID")
	}
}

func TestDistribution(t *testing.T) {
	items := []model.Record{
		{ChoiceValue: "Strongly agree"},
		{ChoiceValue: "strongly agree, with caveats"},
		{ChoiceValue: "No"},
		{ChoiceValue: ""},
		{AnswerText: "free text only"},
	}

	got := Distribution(items)
	want := map[string]float64{
		"Strongly agree": 66.67,
		"No":             33.33,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Distribution = %v, want %v", got, want)
	}
}

func TestDistribution_NoChoices(t *testing.T) {
	items := []model.Record{{AnswerText: "prose"}}
	if got := Distribution(items); len(got) != 0 {
		t.Errorf("expected an empty distribution, got %v", got)
	}
}
