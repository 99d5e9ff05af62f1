package domain

import (
	"math"
	"time"
)

// SpaceStats aggregates occupancy counters over a set of spaces.
type SpaceStats struct {
	Total       int `json:"total"`
	Occupied    int `json:"occupied"`
	Vacant      int `json:"vacant"`
	Notice      int `json:"notice"`
	PeopleCount int `json:"people_count"`
}

// ProjectStats extends SpaceStats with the project-level derived values.
type ProjectStats struct {
	SpaceStats
	OccupancyPercent int `json:"occupancy_percent"`
	ConflictCount    int `json:"conflict_count"`
}

// ComputeSpaceStats classifies each space by its derived status. PeopleCount
// increments whenever a tenant is present regardless of status, which covers
// occupied-on-notice tenants.
func ComputeSpaceStats(spaces []Space) SpaceStats {
	stats := SpaceStats{Total: len(spaces)}
	for _, space := range spaces {
		switch space.Status() {
		case SpaceOccupied:
			stats.Occupied++
		case SpaceNotice:
			stats.Notice++
		default:
			stats.Vacant++
		}
		if space.Tenant != nil {
			stats.PeopleCount++
		}
	}
	return stats
}

// ComputeRoomStats aggregates over a single room's spaces.
func ComputeRoomStats(room Room) SpaceStats {
	return ComputeSpaceStats(room.Spaces)
}

// ComputeAddressStats flattens all rooms' spaces for an address.
func ComputeAddressStats(address Address) SpaceStats {
	return ComputeSpaceStats(flattenAddress(address))
}

// ComputeProjectStats flattens every space in the project and derives the
// occupancy percentage (0 when the project has no spaces) and conflict count.
func ComputeProjectStats(project Project, now time.Time) ProjectStats {
	var spaces []Space
	for _, address := range project.Addresses {
		spaces = append(spaces, flattenAddress(address)...)
	}
	stats := ProjectStats{SpaceStats: ComputeSpaceStats(spaces)}
	if stats.Total > 0 {
		stats.OccupancyPercent = int(math.Round(100 * float64(stats.Occupied+stats.Notice) / float64(stats.Total)))
	}
	stats.ConflictCount = len(DetectConflicts(project, now))
	return stats
}

func flattenAddress(address Address) []Space {
	var spaces []Space
	for _, room := range address.Rooms {
		spaces = append(spaces, room.Spaces...)
	}
	return spaces
}
