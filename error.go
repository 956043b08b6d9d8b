package rasvec

import "errors"

var (
	ErrGdalDriverOpen         = errors.New("gdal driver open err")
	ErrGdalDriverCreate       = errors.New("gdal driver create err")
	ErrVoidSrid               = errors.New("gdal layer with void srid")
	ErrGdalWrongGeoType       = errors.New("gdal wrong geo type")
	ErrInvalidWKT             = errors.New("invalid WKT")
	ErrInvalidTif             = errors.New("invalid tif")
	ErrTifReadFailed          = errors.New("tif read failed")
	ErrTifWriteFailed         = errors.New("tif write failed")
	ErrWrongBand              = errors.New("wrong band index")
	ErrWrongBufferSize        = errors.New("wrong buffer size")
	ErrSingularTransform      = errors.New("geo transform is not invertible")
	ErrEmptyGeometries        = errors.New("no geometries to mask with")
	ErrNoValidFeature         = errors.New("no valid feature written")
	ErrNoOverlap              = errors.New("geometries do not overlap raster")
	ErrCrsMismatch            = errors.New("raster and vector crs mismatch")
	ErrNoDataNotRepresentable = errors.New("nodata not representable in raster data type")
	ErrUnsupportedDataType    = errors.New("unsupported raster data type")
)
