package domain

import "strings"

type Frequency string

const (
	FrequencyOneTime        Frequency = "ONE_TIME"
	FrequencyDaily          Frequency = "DAILY"
	FrequencyTwiceADay      Frequency = "TWICE_A_DAY"
	FrequencyThreeTimesADay Frequency = "THREE_TIMES_A_DAY"
	FrequencyFourTimesADay  Frequency = "FOUR_TIMES_A_DAY"
	FrequencyEveryOtherDay  Frequency = "EVERY_OTHER_DAY"
	FrequencyWeekly         Frequency = "WEEKLY"
	FrequencyMonthly        Frequency = "MONTHLY"
	FrequencyAsNeeded       Frequency = "AS_NEEDED"
	FrequencyCustom         Frequency = "CUSTOM"
)

var frequencies = []Frequency{
	FrequencyOneTime,
	FrequencyDaily,
	FrequencyTwiceADay,
	FrequencyThreeTimesADay,
	FrequencyFourTimesADay,
	FrequencyEveryOtherDay,
	FrequencyWeekly,
	FrequencyMonthly,
	FrequencyAsNeeded,
	FrequencyCustom,
}

func (f Frequency) String() string {
	return string(f)
}

func (f Frequency) Valid() bool {
	for _, known := range frequencies {
		if f == known {
			return true
		}
	}
	return false
}

func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", NewValidationError("unknown frequency "+s, "frequency")
	}
	return f, nil
}
