package utils

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	FILE_EXT_SHP = ".shp"
	FILE_EXT_CPG = ".cpg"
	FILE_EXT_ZIP = ".zip"

	UTF8  = "UTF8"
	UTF_8 = "UTF-8"
)

var (
	ErrNoShpInZip  = errors.New("no shp in zip")
	ErrIllegalPath = errors.New("illegal file path in zip")
)

func GetUniqSubDir(parentPath string) (path string, err error) {
	path = filepath.Join(parentPath, uuid.NewString())
	err = os.Mkdir(path, os.ModePerm)
	return
}

func GetFilenameWithoutExt(path string) (name string) {
	name = filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(path))
	return
}

func IsZip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), FILE_EXT_ZIP)
}

// 解压到dstDir，返回解压出的文件路径
func Unzip(zipFile, dstDir string) (files []string, err error) {
	reader, err := zip.OpenReader(zipFile)
	if err != nil {
		return
	}
	defer reader.Close()
	for _, f := range reader.File {
		path := filepath.Join(dstDir, f.Name)
		if !strings.HasPrefix(path, filepath.Clean(dstDir)+string(os.PathSeparator)) {
			err = fmt.Errorf("%w: %s", ErrIllegalPath, f.Name)
			return
		}
		if f.FileInfo().IsDir() {
			if err = os.MkdirAll(path, os.ModePerm); err != nil {
				return
			}
			continue
		}
		if err = unzipFile(f, path); err != nil {
			return
		}
		files = append(files, path)
	}
	return
}

func unzipFile(f *zip.File, path string) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return
	}
	rc, err := f.Open()
	if err != nil {
		return
	}
	defer rc.Close()
	out, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		if e := out.Close(); err == nil {
			err = e
		}
	}()
	_, err = io.Copy(out, rc)
	return
}

// 解压zip并找出其中的shp，utf8表示cpg声明为UTF-8编码
func GetShpInZip(zipFile, dstDir string) (path string, utf8 bool, err error) {
	shpFiles, err := Unzip(zipFile, dstDir)
	if err != nil {
		return
	}
	for _, file := range shpFiles {
		if strings.HasSuffix(strings.ToLower(file), FILE_EXT_SHP) {
			path = file
			continue
		}
		if strings.HasSuffix(strings.ToLower(file), FILE_EXT_CPG) {
			enc, e := os.ReadFile(file)
			if e == nil && len(enc) > 0 {
				encStr := strings.ToUpper(strings.TrimSpace(string(enc)))
				utf8 = encStr == UTF_8 || encStr == UTF8
			}
		}
	}
	if path == "" {
		err = ErrNoShpInZip
	}
	return
}

// 以逗号分隔的波段序号，如 "1,3"
func ParseBands(s string) (bands []int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	for _, b := range strings.Split(s, ",") {
		i := StrToInt(strings.TrimSpace(b))
		if i <= 0 {
			err = fmt.Errorf("invalid band %q", b)
			return nil, err
		}
		bands = append(bands, i)
	}
	return
}
