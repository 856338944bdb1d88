package domain

import "testing"

func TestDefaultPreferenceModel(t *testing.T) {
	m := DefaultPreferenceModel("u-1")

	if m.AgeRange.Min != 18 || m.AgeRange.Max != 100 {
		t.Errorf("Expected 18-100, got %+v", m.AgeRange)
	}
	if len(m.TopicAffinity) != 0 || len(m.FrequentLocales) != 0 {
		t.Error("Expected empty affinity and locales")
	}
	if !m.IsDefault() {
		t.Error("Expected default model to report IsDefault")
	}
}

func TestPreferenceModel_Affinity(t *testing.T) {
	m := &PreferenceModel{TopicAffinity: map[string]int{"hiking": 4}}

	if m.Affinity("Hiking") != 4 {
		t.Errorf("Expected normalized lookup to return 4, got %d", m.Affinity("Hiking"))
	}
	if (&PreferenceModel{}).Affinity("hiking") != 0 {
		t.Error("Expected zero affinity on nil map")
	}
}
