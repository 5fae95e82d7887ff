package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MimeVideo = "video/"
	MimeImage = "image/"
	MimePDF   = "application/pdf"
)
