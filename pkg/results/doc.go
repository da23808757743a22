// Package results provides a client for the university result service.
//
// The service exposes two GET endpoints:
//   - <base>/result?semesterId=S&studentId=X returns the course records of
//     one student in one semester as a JSON array
//   - <base>/result/studentInfo?studentId=X returns the student's profile
//
// Every failure is returned as a *errors.Error so callers can decide what to
// retry:
//   - ErrorTypeNetwork: the request never produced a response, or the body
//     could not be read
//   - ErrorTypeRejected: any status other than 200; Code holds the status
//   - ErrorTypeMalformed: the body is not JSON of the expected shape
//
// An empty array is not an error. FetchResults returns an empty ResultSet and
// FetchStudentInfo a nil payload.
//
// Example usage:
//
//	client := results.NewClient(cfg.API, log)
//
//	records, err := client.FetchResults(ctx, "241", "202-35-652")
//	if err != nil {
//	    if errors.TypeOf(err) == errors.ErrorTypeRejected {
//	        // do not retry
//	    }
//	}
package results
