package resourcepack

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"

	"github.com/pkg/errors"
)

const versionManifestURL = "https://launchermeta.mojang.com/mc/game/version_manifest.json"

func jsonGrab(ctx context.Context, url string, val interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("GET %s: %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(val)
}

// DownloadMinecraftJar fetches the client jar of version ("latest" for the
// newest release) to dest, unless dest already exists.
func DownloadMinecraftJar(ctx context.Context, dest, version string) error {
	if _, err := os.Stat(dest); err == nil {
		return nil
	}

	manifest := struct {
		Latest struct {
			Release string `json:"release"`
		} `json:"latest"`
		Versions []struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		}
	}{}
	if err := jsonGrab(ctx, versionManifestURL, &manifest); err != nil {
		return errors.Wrap(err, "fetching version manifest")
	}
	if version == "latest" {
		version = manifest.Latest.Release
		slog.Info("resolved latest release", "version", version)
	}
	versionURL := ""
	for _, v := range manifest.Versions {
		if v.ID == version {
			versionURL = v.URL
			break
		}
	}
	if versionURL == "" {
		return errors.Wrapf(ErrNotFound, "release version %s", version)
	}

	versionManifest := struct {
		Downloads map[string]struct {
			URL string `json:"url"`
		} `json:"downloads"`
	}{}
	if err := jsonGrab(ctx, versionURL, &versionManifest); err != nil {
		return errors.Wrapf(err, "fetching manifest for %s", version)
	}
	clientJarURL := versionManifest.Downloads["client"].URL
	if clientJarURL == "" {
		return errors.Wrapf(ErrNotFound, "client download for %s", version)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, clientJarURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	size, err := io.Copy(out, resp.Body)
	if err != nil {
		os.Remove(dest)
		return errors.Wrapf(err, "downloading %s", clientJarURL)
	}
	slog.Info("downloaded client jar", "version", version, "MiB", float64(size)/1024/1024)
	return nil
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// LocateMinecraftJar returns the most recently released client jar in the
// local launcher install, or "" if there is none.
func LocateMinecraftJar() string {
	dirs := []string{
		path.Join(os.Getenv("HOME"), ".minecraft/versions"),
	}
	latestJar := ""
	latestTime := ""
	for _, d := range dirs {
		entries, err := os.ReadDir(d)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			vp := path.Join(d, e.Name())
			jp := path.Join(vp, e.Name()+".jar")
			ip := path.Join(vp, e.Name()+".json")
			if !fileExists(jp) || !fileExists(ip) {
				continue
			}
			ib, err := os.ReadFile(ip)
			if err != nil {
				continue
			}
			info := struct {
				Time string `json:"time"`
			}{}
			json.Unmarshal(ib, &info)
			if info.Time > latestTime {
				latestTime = info.Time
				latestJar = jp
			}
		}
	}
	return latestJar
}
