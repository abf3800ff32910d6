package pathlinker

// runRequest is the body of POST /pathlinker/v1/{suid}/run.
type runRequest struct {
	Sources                    string     `json:"sources"`
	Targets                    string     `json:"targets"`
	K                          int        `json:"k"`
	EdgePenalty                float64    `json:"edgePenalty"`
	EdgeWeightType             WeightType `json:"edgeWeightType"`
	EdgeWeightColumnName       string     `json:"edgeWeightColumnName"`
	TreatNetworkAsUndirected   bool       `json:"treatNetworkAsUndirected"`
	AllowSourcesTargetsInPaths bool       `json:"allowSourcesTargetsInPaths"`
	IncludeTiedPaths           bool       `json:"includeTiedPaths"`
	SkipSubnetworkGeneration   bool       `json:"skipSubnetworkGeneration"`
}

type runResponse struct {
	Paths  []path      `json:"paths"`
	Errors []callError `json:"errors"`
}

type path struct {
	Rank     int      `json:"rank"`
	Score    float64  `json:"score"`
	NodeList []string `json:"nodeList"`
}

type callError struct {
	Status  int    `json:"status"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Link    string `json:"link"`
}

// cyjs is the Cytoscape.js document used to upload a network.
type cyjs struct {
	Data     map[string]any `json:"data"`
	Elements cyElements     `json:"elements"`
}

type cyElements struct {
	Nodes []cyElement `json:"nodes"`
	Edges []cyElement `json:"edges"`
}

type cyElement struct {
	Data map[string]any `json:"data"`
}

type uploadResponse struct {
	NetworkSUID int64 `json:"networkSUID"`
}
