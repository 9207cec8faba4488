package landmask

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
)

const (
	// Natural Earth 10m physical vectors (updated rarely)
	landURL  = "https://naciscdn.org/naturalearth/10m/physical/ne_10m_land.zip"
	lakesURL = "https://naciscdn.org/naturalearth/10m/physical/ne_10m_lakes.zip"

	landBase  = "ne_10m_land"
	lakesBase = "ne_10m_lakes"
)

// Provision ensures the Natural Earth land and lakes shapefiles exist under
// dataDir, downloading and extracting them on first use. It returns the two
// .shp paths.
func Provision(dataDir string) (landShp, lakesShp string, err error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", "", fmt.Errorf("creating data directory: %w", err)
	}

	landShp = filepath.Join(dataDir, landBase+".shp")
	lakesShp = filepath.Join(dataDir, lakesBase+".shp")

	for _, src := range []struct {
		url, base, shpPath string
	}{
		{landURL, landBase, landShp},
		{lakesURL, lakesBase, lakesShp},
	} {
		if _, statErr := os.Stat(src.shpPath); statErr == nil {
			continue // already provisioned
		}

		zipPath := filepath.Join(dataDir, src.base+".zip")
		log.Printf("Downloading Natural Earth data from %s...", src.url)
		if err := downloadFile(zipPath, src.url); err != nil {
			return "", "", fmt.Errorf("downloading %s: %w", src.base, err)
		}

		log.Printf("Extracting %s...", src.base)
		if err := unzipFile(zipPath, dataDir); err != nil {
			os.Remove(zipPath)
			return "", "", fmt.Errorf("extracting %s: %w", src.base, err)
		}
		os.Remove(zipPath)
	}

	return landShp, lakesShp, nil
}

// downloadFile downloads a file from a URL to a local path.
func downloadFile(filepath string, url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	out, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

// unzipFile extracts a zip file to a destination directory.
func unzipFile(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		fpath := filepath.Join(dest, f.Name)

		// Reject entries that escape the destination directory.
		if !filepath.HasPrefix(fpath, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal file path: %s", fpath)
		}

		if f.FileInfo().IsDir() {
			os.MkdirAll(fpath, os.ModePerm)
			continue
		}

		if err = os.MkdirAll(filepath.Dir(fpath), os.ModePerm); err != nil {
			return err
		}

		outFile, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			outFile.Close()
			return err
		}

		_, err = io.Copy(outFile, rc)
		outFile.Close()
		rc.Close()

		if err != nil {
			return err
		}
	}
	return nil
}
