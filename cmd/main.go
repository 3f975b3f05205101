// recruiter-service
//
// HR helper backend: recruiters publish job offers with required keywords,
// attach candidate CVs, get a keyword match score per CV and record
// accept/reject decisions.
//
// Exposes:
//   - a REST API with cookie or bearer sessions (gin)
//   - a gRPC API for internal callers (ScoreKeywords, ListCVs, MoveCV, GetStats)
//   - a cron job rescoring stored CVs
//
// Publishes EVENT_CV_STATUS_CHANGED and EVENT_OFFER_KEYWORDS_UPDATED to Redis.
package main

import (
	"os"

	"hrhelper/recruiter-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
