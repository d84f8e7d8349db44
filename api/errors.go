//nolint:lll
package api

import (
	"fmt"

	"go.vocdoni.io/explorer/httprouter/apirest"
)

// APIerror satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 4001-4999 range are the user's fault,
// and error codes 5001-5999 are the server's fault, mimicking HTTP.
var (
	ErrCantParseElectionID     = apirest.APIerror{Code: 4001, HTTPstatus: apirest.HTTPstatusBadRequest, Err: fmt.Errorf("cannot parse electionID")}
	ErrElectionNotFound        = apirest.APIerror{Code: 4002, HTTPstatus: apirest.HTTPstatusNotFound, Err: fmt.Errorf("election not found")}
	ErrContestNotFound         = apirest.APIerror{Code: 4003, HTTPstatus: apirest.HTTPstatusNotFound, Err: fmt.Errorf("contest not found")}
	ErrContestHasNoResults     = apirest.APIerror{Code: 4004, HTTPstatus: apirest.HTTPstatusNotFound, Err: fmt.Errorf("contest has no results")}
	ErrElectionResultsNotFound = apirest.APIerror{Code: 4005, HTTPstatus: apirest.HTTPstatusNotFound, Err: fmt.Errorf("election results not found")}
	ErrParamTrackerMissing     = apirest.APIerror{Code: 4006, HTTPstatus: apirest.HTTPstatusBadRequest, Err: fmt.Errorf("parameter (tracker) missing")}

	ErrMarshalingServerJSONFailed = apirest.APIerror{Code: 5001, HTTPstatus: apirest.HTTPstatusInternalErr, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrCantFetchElectionList      = apirest.APIerror{Code: 5002, HTTPstatus: apirest.HTTPstatusInternalErr, Err: fmt.Errorf("cannot fetch election list")}
	ErrCantFetchElectionResults   = apirest.APIerror{Code: 5003, HTTPstatus: apirest.HTTPstatusInternalErr, Err: fmt.Errorf("cannot fetch election results")}
	ErrCantFetchBallots           = apirest.APIerror{Code: 5004, HTTPstatus: apirest.HTTPstatusInternalErr, Err: fmt.Errorf("cannot fetch ballots")}
	ErrQueryTimeout               = apirest.APIerror{Code: 5005, HTTPstatus: apirest.HTTPstatusGatewayTimeout, Err: fmt.Errorf("query timed out")}
)
