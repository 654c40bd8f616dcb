package utils

import (
	"log"
	"time"
)

// US equities trade on Eastern time; all run timestamps use it so reports
// line up with the trading calendar.
func GetMarketTimeLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return loc
}

func TimeNowMarket() time.Time {
	return time.Now().In(GetMarketTimeLocation())
}

func PrettyDate(date time.Time) string {
	return date.Format("02 Jan 2006 - 15:04 MST")
}
