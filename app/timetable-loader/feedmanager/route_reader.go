package feedmanager

// routeRowReader implements feedRowReader for routes.txt, keeping the route
// ids operated by an allowed agency.
type routeRowReader struct {
	agencyIds map[string]struct{}
	routeIds  map[string]struct{}
}

func newRouteRowReader(agencyIds map[string]struct{}) *routeRowReader {
	return &routeRowReader{
		agencyIds: agencyIds,
		routeIds:  map[string]struct{}{},
	}
}

func (r *routeRowReader) addRow(parser *feedFileParser) error {
	routeId := parser.getString("route_id", false)
	agencyId := parser.getString("agency_id", true)
	if _, ok := r.agencyIds[agencyId]; ok {
		r.routeIds[routeId] = struct{}{}
	}
	return nil
}
