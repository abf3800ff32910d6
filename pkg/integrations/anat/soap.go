package anat

import "encoding/xml"

const (
	soapNS    = "http://schemas.xmlsoap.org/soap/envelope/"
	networkNS = "network"
)

type envelope struct {
	XMLName xml.Name `xml:"S:Envelope"`
	NS      string   `xml:"xmlns:S,attr"`
	Body    any      `xml:"S:Body"`
}

func newEnvelope(body any) envelope {
	return envelope{NS: soapNS, Body: body}
}

// Request bodies, one per algorithm.
type (
	explanatoryBody struct {
		Params *parameters `xml:"ns2:explanatoryParameters"`
	}
	shortestPathsBody struct {
		Params *parameters `xml:"ns2:shortestPathsParams"`
	}
	neighboursBody struct {
		Params *parameters `xml:"ns2:neighbourParams"`
	}
	projectionBody struct {
		Params *parameters `xml:"ns2:projectionParams"`
	}
	resultBody struct {
		SessionID sessionID `xml:"ns2:sessionId"`
	}
)

type sessionID struct {
	NS    string `xml:"xmlns:ns2,attr"`
	Value string `xml:",chardata"`
}

type parameters struct {
	NS                  string            `xml:"xmlns:ns2,attr"`
	BackgroundNetwork   backgroundNetwork `xml:"ns2:backGroundNetwork"`
	BaseNetworkFileName string            `xml:"ns2:baseNetworkFileName"`
	EdgeConstraintMap   string            `xml:"ns2:edgeConstraintMap"`
	NodeConstraintMap   string            `xml:"ns2:nodeConstraintMap"`
	SessionID           string            `xml:"ns2:sessionId"`
	Title               string            `xml:"ns2:title"`
	LengthPenalty       *int              `xml:"ns2:lengthPenalty,omitempty"`
	Margin              *int              `xml:"ns2:margin,omitempty"`
	Curvature           *int              `xml:"ns2:curvature,omitempty"`
	Dominance           *int              `xml:"ns2:dominance,omitempty"`
	AlgorithmType       string            `xml:"ns2:algorithmType"`
	SubAlgorithm        string            `xml:"ns2:subAlgorithm,omitempty"`
	HomogeneousWeight   *float64          `xml:"ns2:homogeneousWeight,omitempty"`
	Anchors             []string          `xml:"ns2:anchors,omitempty"`
	Terminals           []string          `xml:"ns2:terminals,omitempty"`
	Alpha               *float64          `xml:"ns2:alpha,omitempty"`
	Completion          *bool             `xml:"ns2:completion,omitempty"`
	PredictTF           *bool             `xml:"ns2:predictTF,omitempty"`
	Propagate           *bool             `xml:"ns2:propagate,omitempty"`
	TerminalsToAnchors  *bool             `xml:"ns2:terminalsToAnchors,omitempty"`
	Degree              *int              `xml:"ns2:degree,omitempty"`
	Granularity         *int              `xml:"ns2:granularity,omitempty"`

	// Sets holds query names, or extremityNodeSet pairs for shortest
	// paths.
	Sets []any `xml:"ns2:set,omitempty"`
}

type backgroundNetwork struct {
	DefaultConfidence float64    `xml:"ns2:defaultConfidence"`
	NetworkName       string     `xml:"ns2:networkName"`
	Edges             []edgeData `xml:"ns2:edgesData"`
	Nodes             []nodeData `xml:"ns2:nodesData"`
}

type edgeData struct {
	Action         string   `xml:"ns2:action"`
	AdditionalInfo string   `xml:"ns2:additionalInfo"`
	From           string   `xml:"ns2:fromNodeId"`
	To             string   `xml:"ns2:toNodeId"`
	Confidence     *float64 `xml:"ns2:confidence,omitempty"`
}

type nodeData struct {
	Operation  string   `xml:"ns2:operation"`
	NodeID     string   `xml:"ns2:nodeId"`
	Confidence *float64 `xml:"ns2:confidence,omitempty"`
}

type extremityNodeSet struct {
	First  extremityNode `xml:"ns2:first"`
	Second extremityNode `xml:"ns2:second"`
}

type extremityNode struct {
	XSI   string `xml:"xmlns:xsi,attr"`
	XS    string `xml:"xmlns:xs,attr"`
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

func newExtremityNode(name string) extremityNode {
	return extremityNode{
		XSI:   "http://www.w3.org/2001/XMLSchema-instance",
		XS:    "http://www.w3.org/2001/XMLSchema",
		Type:  "xs:string",
		Value: name,
	}
}

// response is a getResult answer or a SOAP fault. Element names match
// whatever their namespace prefix.
type response struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Graph *networkGraph `xml:"networkGraph"`
		Fault *struct {
			String string `xml:"faultstring"`
		} `xml:"Fault"`
	} `xml:"Body"`
}

type networkGraph struct {
	Edges    []responseEdge `xml:"edges"`
	Nodes    []responseNode `xml:"nodes"`
	Warnings []messages     `xml:"warnings"`
	Errors   []messages     `xml:"errors"`
}

type responseEdge struct {
	Directed    bool    `xml:"directed"`
	Frequency   float64 `xml:"frequency"`
	ID1         string  `xml:"id1"`
	ID2         string  `xml:"id2"`
	Probability float64 `xml:"probability"`
	PubMedIDs   string  `xml:"pubMedIDs"`
}

type responseNode struct {
	Redundancy   float64 `xml:"redundancy"`
	Significance float64 `xml:"significance"`
	ID           string  `xml:"id"`
	Status       string  `xml:"status"`
}

type messages struct {
	Message []string `xml:"message"`
}
