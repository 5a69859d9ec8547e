package onedrive

// childrenResponse is the envelope of a Graph children listing
type childrenResponse struct {
	Value    []driveItem `json:"value"`
	NextLink string      `json:"@odata.nextLink,omitempty"`
	Count    int         `json:"@odata.count,omitempty"`
}

// driveItem represents one Graph drive item
type driveItem struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	CreatedAt   string       `json:"createdDateTime,omitempty"`
	File        *fileFacet   `json:"file,omitempty"`
	Folder      *folderFacet `json:"folder,omitempty"`
	Photo       *photoFacet  `json:"photo,omitempty"`
	Video       *videoFacet  `json:"video,omitempty"`
	DownloadURL string       `json:"@microsoft.graph.downloadUrl,omitempty"`
}

type fileFacet struct {
	MimeType string `json:"mimeType,omitempty"`
}

type folderFacet struct {
	ChildCount int `json:"childCount,omitempty"`
}

type photoFacet struct {
	TakenDateTime string `json:"takenDateTime,omitempty"`
}

type videoFacet struct {
	Duration int64 `json:"duration,omitempty"`
}

// thumbnailsResponse is the envelope of a thumbnails lookup
type thumbnailsResponse struct {
	Value []thumbnailSet `json:"value"`
}

// thumbnailSet holds the size variants of one item's thumbnail
type thumbnailSet struct {
	Large  thumbnail `json:"large,omitempty"`
	Medium thumbnail `json:"medium,omitempty"`
	Small  thumbnail `json:"small,omitempty"`
}

type thumbnail struct {
	URL    string `json:"url,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// batchRequest is the envelope of a Graph $batch call
type batchRequest struct {
	Requests []batchOperation `json:"requests"`
}

type batchOperation struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	URL    string `json:"url"`
}

// batchResponse is the envelope of a Graph $batch result
type batchResponse struct {
	Responses []batchResult `json:"responses"`
}

type batchResult struct {
	ID     string `json:"id"`
	Status int    `json:"status"`
}
