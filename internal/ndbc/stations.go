package ndbc

// StationInfo is a known buoy with its deployed position.
type StationInfo struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// PriorityStations are the major offshore buoys fetched by default: good
// data coverage near the coasts the map focuses on.
var PriorityStations = []StationInfo{
	// West Coast
	{"46026", "San Francisco", 37.759, -122.833},
	{"46042", "Monterey", 36.785, -122.398},
	{"46011", "Santa Maria", 34.868, -120.857},
	{"46025", "Santa Monica Basin", 33.749, -119.053},
	{"46086", "San Clemente Basin", 32.491, -118.034},
	{"46047", "Tanner Banks", 32.433, -119.533},
	{"46053", "E. Santa Barbara", 34.252, -119.841},
	{"46054", "W. Santa Barbara", 34.274, -120.459},
	{"46069", "S. Santa Rosa Island", 33.674, -120.212},

	// Pacific Northwest
	{"46041", "Cape Elizabeth", 47.353, -124.731},
	{"46029", "Columbia River Bar", 46.144, -124.510},
	{"46050", "Stonewall Banks", 44.641, -124.500},

	// Hawaii
	{"51000", "Hawaii", 23.538, -153.913},
	{"51001", "NW Hawaii", 24.321, -162.058},
	{"51002", "SW Hawaii", 17.190, -157.808},
	{"51003", "E Hawaii", 19.228, -160.662},
	{"51004", "SE Hawaii", 17.445, -152.382},

	// East Coast
	{"41002", "South Hatteras", 31.759, -74.936},
	{"41004", "EDISTO", 32.501, -79.099},
	{"41008", "Grays Reef", 31.402, -80.869},
	{"41013", "Frying Pan Shoals", 33.436, -77.743},
	{"41025", "Diamond Shoals", 35.006, -75.402},
	{"41048", "W. Bermuda", 31.838, -69.590},
	{"44025", "Long Island", 40.251, -73.164},
	{"44013", "Boston", 42.346, -70.651},
	{"44027", "Jonesport", 44.283, -67.307},

	// Gulf of Mexico
	{"42001", "Mid Gulf", 25.888, -89.658},
	{"42002", "W. Gulf", 25.790, -93.666},
	{"42003", "E. Gulf", 25.925, -85.612},
	{"42019", "Freeport", 27.913, -95.360},
	{"42020", "Corpus Christi", 26.968, -96.694},
	{"42035", "Galveston", 29.232, -94.413},
	{"42036", "W. Tampa", 28.500, -84.517},
}
