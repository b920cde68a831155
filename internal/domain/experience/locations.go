package experience

import "sort"

// LocationGroup collects experiences sharing a map point
type LocationGroup struct {
	Location    string     `json:"location"`
	Lat         float64    `json:"lat"`
	Lon         float64    `json:"lon"`
	Experiences []Response `json:"experiences"`
}

type point struct {
	lat, lon float64
}

// GroupByLocation groups geolocated records by their coordinate pair in
// first-seen order. The first record of a group names it. Records without
// a location name or without both coordinates are skipped.
func GroupByLocation(items []*Experience) []LocationGroup {
	groups := []LocationGroup{}
	index := make(map[point]int)

	for _, e := range items {
		if !e.HasCoordinates() || !e.Location.Valid || e.Location.String == "" {
			continue
		}

		key := point{lat: e.Lat.Float64, lon: e.Lon.Float64}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, LocationGroup{
				Location: e.Location.String,
				Lat:      key.lat,
				Lon:      key.lon,
			})
		}
		groups[i].Experiences = append(groups[i].Experiences, Serialize(*e))
	}

	return groups
}

// Recent returns up to n records with the latest start dates, newest first.
func Recent(items []*Experience, n int) []*Experience {
	sorted := make([]*Experience, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartDate.After(sorted[j].StartDate)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
