package services

import "strings"

// Seed genre constraints imposed by the Spotify recommendations endpoint:
// at most 3 seed genres, each drawn from the fixed vocabulary below.
const (
	defaultSeedGenre = "pop"
	maxSeedGenres    = 3
)

// seedGenres is the vocabulary accepted by the recommendations endpoint
// (GET /recommendations/available-genre-seeds).
var seedGenres = map[string]struct{}{
	"acoustic": {}, "afrobeat": {}, "alt-rock": {}, "alternative": {}, "ambient": {},
	"anime": {}, "black-metal": {}, "bluegrass": {}, "blues": {}, "bossanova": {},
	"brazil": {}, "breakbeat": {}, "british": {}, "cantopop": {}, "chicago-house": {},
	"children": {}, "chill": {}, "classical": {}, "club": {}, "comedy": {},
	"country": {}, "dance": {}, "dancehall": {}, "death-metal": {}, "deep-house": {},
	"detroit-techno": {}, "disco": {}, "disney": {}, "drum-and-bass": {}, "dub": {},
	"dubstep": {}, "edm": {}, "electro": {}, "electronic": {}, "emo": {},
	"folk": {}, "forro": {}, "french": {}, "funk": {}, "garage": {},
	"german": {}, "gospel": {}, "goth": {}, "grindcore": {}, "groove": {},
	"grunge": {}, "guitar": {}, "happy": {}, "hard-rock": {}, "hardcore": {},
	"hardstyle": {}, "heavy-metal": {}, "hip-hop": {}, "holidays": {}, "honky-tonk": {},
	"house": {}, "idm": {}, "indian": {}, "indie": {}, "indie-pop": {},
	"industrial": {}, "iranian": {}, "j-dance": {}, "j-idol": {}, "j-pop": {},
	"j-rock": {}, "jazz": {}, "k-pop": {}, "kids": {}, "latin": {},
	"latino": {}, "malay": {}, "mandopop": {}, "metal": {}, "metal-misc": {},
	"metalcore": {}, "minimal-techno": {}, "movies": {}, "mpb": {}, "new-age": {},
	"new-release": {}, "opera": {}, "pagode": {}, "party": {}, "philippines-opm": {},
	"piano": {}, "pop": {}, "pop-film": {}, "post-dubstep": {}, "power-pop": {},
	"progressive-house": {}, "psych-rock": {}, "punk": {}, "punk-rock": {}, "r-n-b": {},
	"rainy-day": {}, "reggae": {}, "reggaeton": {}, "road-trip": {}, "rock": {},
	"rock-n-roll": {}, "rockabilly": {}, "romance": {}, "sad": {}, "salsa": {},
	"samba": {}, "sertanejo": {}, "show-tunes": {}, "singer-songwriter": {}, "ska": {},
	"sleep": {}, "songwriter": {}, "soul": {}, "soundtracks": {}, "spanish": {},
	"study": {}, "summer": {}, "swedish": {}, "synth-pop": {}, "tango": {},
	"techno": {}, "trance": {}, "trip-hop": {}, "turkish": {}, "work-out": {},
	"world-music": {},
}

// ValidateGenres filters the requested genres down to the seed vocabulary,
// preserving order and truncating to the seed limit. An input that filters
// down to nothing yields the single default genre, so the result is always
// usable as a seed list.
func ValidateGenres(requested []string) []string {
	valid := make([]string, 0, maxSeedGenres)
	for _, g := range requested {
		g = strings.ToLower(strings.TrimSpace(g))
		if _, ok := seedGenres[g]; !ok {
			continue
		}
		valid = append(valid, g)
		if len(valid) == maxSeedGenres {
			break
		}
	}
	if len(valid) == 0 {
		return []string{defaultSeedGenre}
	}
	return valid
}
