package db

type PostSnapshot struct {
	Blog    string
	PostID  int64
	Title   string
	Author  string
	Hash    string
	RawBody string
	TakenAt int64
}
