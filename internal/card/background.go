package card

import "time"

// Gradient is a two-stop diagonal card background.
type Gradient struct {
	ID   string
	From string
	To   string
}

// Backgrounds rotate hourly; every visitor sees the same one within an hour.
var Backgrounds = []Gradient{
	{ID: "twilight", From: "#667eea", To: "#764ba2"},
	{ID: "blossom", From: "#f093fb", To: "#f5576c"},
	{ID: "sky", From: "#4facfe", To: "#00f2fe"},
	{ID: "mint", From: "#43e97b", To: "#38f9d7"},
	{ID: "sunrise", From: "#fa709a", To: "#fee140"},
	{ID: "lagoon", From: "#30cfd0", To: "#330867"},
}

// PickBackground returns Backgrounds[floor(unix/3600) mod len].
func PickBackground(now time.Time) Gradient {
	secs := now.Unix()
	hours := secs / 3600
	if secs%3600 < 0 {
		hours--
	}
	n := int64(len(Backgrounds))
	return Backgrounds[((hours%n)+n)%n]
}
