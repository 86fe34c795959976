/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package catalog

// fallbackCharts is the static built-in catalog used when neither the cache
// nor the repository can provide one. Kept sorted.
var fallbackCharts = []string{
	"advisory-board-backend", "advisory-board-frontend", "archiva", "archives", "bdr",
	"cachet", "casservice", "cdr", "centos7dev", "cluster-role-manager", "cm-share",
	"contreg", "converters", "databridge", "datadict", "eea-website-backend",
	"eea-website-frontend", "eggrepo", "eionet-gemet", "eionetldap", "elastic6",
	"elastic7", "emrt-esd", "emrt-necd", "eni-seis", "eunis", "fise-backend",
	"fise-frontend", "freshwater", "gitea", "glosreg", "haproxy", "iwlearn",
	"jenkins-master", "jenkins-slave", "keycloak-eea", "landscapeapi", "lcp",
	"lcp-frontend", "marine", "mars-backend", "mars-frontend", "memcached",
	"msd", "netcdf-utils", "opensearch", "opensearch-dashboards", "postfix",
	"postgres", "redis", "reportnet", "reportnet3", "rn-auth", "rn-ldap",
	"rn-postgresql", "sugarcube", "tika", "tralert", "varnish", "veeam-agent",
	"volto", "wise-backend", "wise-frontend",
}

// FallbackCharts returns a copy of the static built-in chart list.
func FallbackCharts() []string {
	return append([]string(nil), fallbackCharts...)
}
