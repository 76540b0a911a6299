package telemetry

import "time"

// row builds a test record; an empty date string leaves DateValid false.
func row(region, market, site, date string, risk int, values ...Value) Record {
	r := Record{Region: region, Market: market, Site: site, Risk: risk, Values: values}
	if date != "" {
		r.Date, r.DateValid = ParseDate(date)
	}
	return r
}

func nums(fs ...float64) []Value {
	out := make([]Value, len(fs))
	for i, f := range fs {
		out[i] = Num(f)
	}
	return out
}

func day(s string) time.Time {
	d, _ := ParseDate(s)
	return d
}

// repeat fills n cells with the same present value.
func repeat(f float64, n int) []Value {
	out := make([]Value, n)
	for i := range out {
		out[i] = Num(f)
	}
	return out
}
