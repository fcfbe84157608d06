package remote

// EmptyResponse needs an exported field, gob refuses empty structs.
type EmptyResponse struct {
	OK bool
}

type PlayRequest struct {
	Delay uint16
	Loop  bool
}

type UploadRequest struct {
	Stream []byte
}
