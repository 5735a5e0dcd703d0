package java

// CatalogURL is the official runtime catalog.
const CatalogURL = "https://launchermeta.mojang.com/v1/products/java-runtime/2ec0cc96c44e5a76b9c8b7c39df7210883d12871/all.json"

// Catalog is all.json: platform key, then component name, then listings.
type Catalog map[string]map[string][]Listing

// Listing is one published build of a component.
type Listing struct {
	Manifest struct {
		SHA1 string `json:"sha1"`
		Size int64  `json:"size"`
		URL  string `json:"url"`
	} `json:"manifest"`
	Version struct {
		Name     string `json:"name"`
		Released string `json:"released"`
	} `json:"version"`
}

// ManifestURL returns the file table of the first listing of the first
// non-empty preferred component.
func (c Catalog) ManifestURL(platformKey string, v Version) (string, bool) {
	components, ok := c[platformKey]
	if !ok {
		return "", false
	}
	for _, name := range v.components() {
		if listings := components[name]; len(listings) > 0 {
			return listings[0].Manifest.URL, listings[0].Manifest.URL != ""
		}
	}
	return "", false
}

// File types in a runtime file table.
const (
	FileTypeFile      = "file"
	FileTypeDirectory = "directory"
	FileTypeLink      = "link"
)

// FileTable lists every path of a runtime build.
type FileTable struct {
	Files map[string]RuntimeFile `json:"files"`
}

// RuntimeFile is one entry of a FileTable.
type RuntimeFile struct {
	Type       string         `json:"type"`
	Executable bool           `json:"executable,omitempty"`
	Downloads  *FileDownloads `json:"downloads,omitempty"`
	Target     string         `json:"target,omitempty"`
}

// FileDownloads offers the raw file and optionally an LZMA-compressed copy.
type FileDownloads struct {
	Raw  FileDownload  `json:"raw"`
	LZMA *FileDownload `json:"lzma,omitempty"`
}

// FileDownload is a single downloadable blob.
type FileDownload struct {
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}
