package calendar

import (
	"reflect"
	"testing"
	"time"
)

func TestMatchedWeekdays(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []time.Weekday
	}{
		{name: "two days with times", text: "Tue/Thu 3:00-5:00pm", expected: []time.Weekday{time.Tuesday, time.Thursday}},
		{name: "empty", text: "", expected: nil},
		{name: "upper case", text: "MON", expected: []time.Weekday{time.Monday}},
		{name: "lower case", text: "mon", expected: []time.Weekday{time.Monday}},
		{name: "full names", text: "Wednesdays and Fridays after school", expected: []time.Weekday{time.Wednesday, time.Friday}},
		{name: "no weekday", text: "3-5pm at the Y", expected: nil},
		{name: "weekend", text: "Sat & Sun mornings", expected: []time.Weekday{time.Sunday, time.Saturday}},
		{name: "substring inside another word", text: "Soccer at Monarch Park", expected: []time.Weekday{time.Monday}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := MatchedWeekdays(test.text).Days()
			if !reflect.DeepEqual(got, test.expected) {
				t.Errorf("expected %v, got %v", test.expected, got)
			}
		})
	}
}

func TestIsActiveOn(t *testing.T) {
	if !IsActiveOn("Wed 4pm", time.Wednesday) {
		t.Error("expected Wed 4pm to be active on Wednesday")
	}
	if IsActiveOn("Wed 4pm", time.Thursday) {
		t.Error("expected Wed 4pm to be inactive on Thursday")
	}
	if IsActiveOn("", time.Monday) {
		t.Error("expected empty descriptor to never be active")
	}
}

func TestWeekdaySet(t *testing.T) {
	set := NewWeekdaySet(time.Monday, time.Friday, time.Monday)
	if !set.Has(time.Monday) || !set.Has(time.Friday) {
		t.Errorf("expected Monday and Friday in set, got %v", set.Days())
	}
	if set.Has(time.Tuesday) {
		t.Error("did not expect Tuesday in set")
	}
	if set.Has(time.Weekday(9)) || set.With(time.Weekday(-1)) != set {
		t.Error("expected out-of-range weekdays to be ignored")
	}
	if !WeekdaySet(0).Empty() {
		t.Error("expected zero set to be empty")
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Weekday
		ok       bool
	}{
		{"Mon", time.Monday, true},
		{"monday", time.Monday, true},
		{" THURS ", time.Thursday, true},
		{"sat", time.Saturday, true},
		{"someday", 0, false},
	}
	for _, test := range tests {
		got, ok := ParseWeekday(test.input)
		if ok != test.ok || (ok && got != test.expected) {
			t.Errorf("%q: expected (%v, %v), got (%v, %v)", test.input, test.expected, test.ok, got, ok)
		}
	}
}

func TestTimeHint(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"Tue/Thu 3:00-5:00pm", "3:00-5:00pm"},
		{"Wed 4pm", "4pm"},
		{"Mondays 3:30pm", "3:30pm"},
		{"Mon, Wed & Fri 8am", "8am"},
		{"Sat", ""},
		{"", ""},
		{"3-5pm", "3-5pm"},
	}
	for _, test := range tests {
		if got := TimeHint(test.text); got != test.expected {
			t.Errorf("%q: expected %q, got %q", test.text, test.expected, got)
		}
	}
}
