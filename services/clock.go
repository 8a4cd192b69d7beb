package services

import "time"

type clock func() time.Time

func orNow(c func() time.Time) clock {
	if c == nil {
		return time.Now
	}
	return c
}
