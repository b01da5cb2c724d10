package utils

import (
	"fmt"
	"time"
)

var hariID = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

var bulanID = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatDateID -> "Kamis, 15 Oktober 2026"
func FormatDateID(t time.Time) string {
	return fmt.Sprintf("%s, %d %s %d", hariID[t.Weekday()], t.Day(), bulanID[t.Month()-1], t.Year())
}

// FormatDateTimeID -> "Kamis, 15 Oktober 2026 pukul 14.05"
func FormatDateTimeID(t time.Time) string {
	return fmt.Sprintf("%s pukul %02d.%02d", FormatDateID(t), t.Hour(), t.Minute())
}

// DayRange mengembalikan awal hari t dan awal hari berikutnya di lokasi t.
func DayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
