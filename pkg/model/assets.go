package model

// AssetIndex is the object list referenced by assetIndex.url.
type AssetIndex struct {
	Objects        map[string]AssetObject `json:"objects"`
	MapToResources bool                   `json:"map_to_resources,omitempty"`
	Virtual        bool                   `json:"virtual,omitempty"`
}

// AssetObject is one content-addressed asset.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// ObjectPath is the hash-prefixed relative location of the object, "ab/abcdef...".
func (o AssetObject) ObjectPath() string {
	if len(o.Hash) < 2 {
		return o.Hash
	}
	return o.Hash[:2] + "/" + o.Hash
}
