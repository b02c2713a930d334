package exfat

// Cluster index sentinels. Valid cluster references span [FirstCluster,
// FirstCluster+ClusterCount-1]; BadCluster and LastCluster are reserved FAT
// entry values rather than addressable clusters.
const (
	FirstCluster uint32 = 2
	BadCluster   uint32 = 0xfffffff7
	LastCluster  uint32 = 0xffffffff
)
