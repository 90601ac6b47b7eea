package loader

// ResolveCoordinates picks the position for a row from two candidate
// column pairs. The primary pair wins when both halves are present; a
// partially filled primary pair never mixes with the secondary one. When
// neither pair is complete both results are nil and the row belongs in the
// missing-coordinates report.
func ResolveCoordinates(primaryLat, primaryLon, secondaryLat, secondaryLon *float64) (lat, lon *float64) {
	if primaryLat != nil && primaryLon != nil {
		return primaryLat, primaryLon
	}
	if secondaryLat != nil && secondaryLon != nil {
		return secondaryLat, secondaryLon
	}
	return nil, nil
}
