package model

type LoadDatasetInput struct {
	Filename string
	Data     []byte
}
