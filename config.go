package rasvec

const (
	FILE_EXT_SHP     = ".shp"
	FILE_EXT_CPG     = ".cpg"
	FILE_EXT_GPKG    = ".gpkg"
	FILE_EXT_JSON    = ".json"
	FILE_EXT_GEOJSON = ".geojson"

	SHAPE_ENCODING = "UTF-8"
	UTF8_ENC       = "UTF8"

	SHP_DRIVER_NAME     = "ESRI Shapefile"
	GPKG_DRIVER_NAME    = "GPKG"
	GEOJSON_DRIVER_NAME = "GeoJSON"
	GTIFF_DRIVER_NAME   = "GTiff"

	// 教程中使用的NoData值
	DefaultNoData = 9999

	// 掩膜MEM数据集中矢量内像元的烧录值
	maskBurnValue = 1

	DefaultPreviewSide = 512

	COMPRESS_OPTION = "COMPRESS=LZW"

	MEM_MASK = "mask_%s"
)
