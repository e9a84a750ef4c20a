package model

// Result Record columns.
const (
	ColDriverID        = "driver_id"
	ColDriverCode      = "driver_code"
	ColConstructorID   = "constructor_id"
	ColConstructorName = "constructor_name"
	ColSeason          = "season"
	ColRaceID          = "race_id"
	ColRound           = "round"
	ColCircuitName     = "circuit_name"
	ColGridPosition    = "grid_position"
	ColFinishPosition  = "finish_position"
	ColStatus          = "status"
	ColFastestLap      = "fastest_lap_duration_seconds"
	ColQualifying      = "qualifying_duration_seconds"
)

// Derived Feature Record columns.
const (
	ColAvgFinishPositionL5         = "avg_finish_position_L5"
	ColRecentDNFCountL5            = "recent_dnf_count_L5"
	ColAvgRacecraftScoreL22        = "avg_racecraft_score_L22"
	ColTrackSpecializationIndexL22 = "track_specialization_index_L22"
	ColRecentCarPaceDeltaL5        = "recent_car_pace_delta_L5"
	ColTeamAvgPaceDeltaL22         = "team_avg_pace_delta_L22"
	ColOverallReliabilityRateL22   = "overall_reliability_rate_L22"
	ColQualifyingGapToPole         = "qualifying_gap_to_pole"
)

// Downstream columns.
const (
	ColIsPodium    = "is_podium"
	ColProbability = "podium_probability"
)

// ResultColumns lists the Result Record columns in output order.
var ResultColumns = []string{ //nolint:gochecknoglobals // fixed schema
	ColDriverID,
	ColDriverCode,
	ColConstructorID,
	ColConstructorName,
	ColSeason,
	ColRaceID,
	ColRound,
	ColCircuitName,
	ColGridPosition,
	ColFinishPosition,
	ColStatus,
	ColFastestLap,
	ColQualifying,
}

// FeatureColumns lists the engineered columns in output order.
var FeatureColumns = []string{ //nolint:gochecknoglobals // fixed schema
	ColAvgFinishPositionL5,
	ColRecentDNFCountL5,
	ColAvgRacecraftScoreL22,
	ColTrackSpecializationIndexL22,
	ColRecentCarPaceDeltaL5,
	ColTeamAvgPaceDeltaL22,
	ColOverallReliabilityRateL22,
	ColQualifyingGapToPole,
}
