package liveheats

const seriesRankingsQuery = `
query GetSeriesRankings($id: ID!, $divisionId: ID!) {
  series(id: $id) {
    rankings(divisionId: $divisionId) {
      athlete { id name dob nationality image }
      place
      points
      results {
        place
        points
        eventDivision { event { name date } }
      }
    }
  }
}`

const divisionsQuery = `
query GetDivisions($id: ID!) {
  series(id: $id) {
    name
    rankingsDivisions { id name }
  }
}`

const eventAthletesQuery = `
query event($id: ID!) {
  event(id: $id) {
    name
    date
    status
    eventDivisions {
      division { name }
      entries {
        athlete { id name nationality dob image }
        status
        bib
      }
      status
    }
  }
}`

const organisationSeriesQuery = `
query GetOrganisationSeries($shortName: String) {
  organisationByShortName(shortName: $shortName) {
    id
    name
    series {
      id
      name
      rankingsDivisions { id name }
    }
  }
}`

const eventsBySeriesQuery = `
query GetEventsBySeries($id: ID!) {
  series(id: $id) {
    events { id name date }
  }
}`
